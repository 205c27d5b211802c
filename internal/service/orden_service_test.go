package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abrirMesa opens an empty order on a fresh table and returns its id.
func abrirMesa(t *testing.T, f *fixture, numero int) uuid.UUID {
	t.Helper()
	f.crearMesa(t, numero)
	resp, err := f.mesaSvc.AbrirOrden(context.Background(), f.rid, numero, f.usuario, dto.AbrirOrdenRequest{})
	require.NoError(t, err)
	return uuid.MustParse(resp.Orden.ID)
}

func seedProducto(t *testing.T, f *fixture, nombre string, precio int64, activo bool) uuid.UUID {
	t.Helper()
	p := &model.Producto{RestauranteID: f.rid, Nombre: nombre, Tipo: "plato", Precio: precio, Activo: activo}
	require.NoError(t, f.productos.Create(context.Background(), p))
	return p.ID
}

func TestAgregarItems_RecalculaTotal(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	resp, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{Items: []dto.ItemOrdenRequest{
		itemLibre("plato", "Bandeja paisa", 2, 1590000),
		itemLibre("bebida", "Jugo de mora", 1, 600000),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(3780000), resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(3180000), resp.Items[0].PrecioTotal)
	assert.Contains(t, f.events.keys(), service.EventoOrdenItems)
}

func TestAgregarItems_DesdeCatalogo(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)
	pid := seedProducto(t, f, "Sancocho", 1800000, true)

	ref := pid.String()
	notas := "sin cilantro"
	resp, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{Items: []dto.ItemOrdenRequest{
		// name and price in the request are ignored for catalog lines
		{ProductoID: &ref, Nombre: "otro", Cantidad: 3, Notas: &notas},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	it := resp.Items[0]
	assert.Equal(t, "Sancocho", it.Nombre)
	assert.Equal(t, int64(1800000), it.PrecioUnitario)
	assert.Equal(t, int64(5400000), it.PrecioTotal)
	require.NotNil(t, it.ProductoID)
	assert.Equal(t, ref, *it.ProductoID)
	require.NotNil(t, it.Notas)
	assert.Equal(t, notas, *it.Notas)
	assert.Equal(t, int64(5400000), resp.Total)
}

func TestAgregarItems_ProductoInactivoONoExiste(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	inactivo := seedProducto(t, f, "Lechona", 2500000, false).String()
	_, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{{ProductoID: &inactivo, Cantidad: 1}},
	})
	assert.ErrorIs(t, err, service.ErrProductoInactivo)

	desconocido := uuid.NewString()
	_, err = f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{{ProductoID: &desconocido, Cantidad: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNoEncontrado)

	o, _ := f.ordenes.FindByID(context.Background(), ordenID)
	assert.Empty(t, o.Items)
	assert.Equal(t, int64(0), o.Total)
}

func TestAgregarItems_LineaLibreIncompleta(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	_, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{{Tipo: "plato", Nombre: "Sin precio", Cantidad: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrItemInvalido)

	_, err = f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{itemLibre("plato", "Precio negativo", 1, -1)},
	})
	assert.ErrorIs(t, err, domain.ErrItemInvalido)
}

func TestAgregarItems_OrdenCerrada(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	_, err := f.mesaSvc.Cobrar(context.Background(), f.rid, 1, f.usuario, dto.CobrarMesaRequest{MetodoPago: domain.MetodoEfectivo})
	require.NoError(t, err)

	_, err = f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{itemLibre("bebida", "Tinto", 1, 200000)},
	})
	assert.ErrorIs(t, err, domain.ErrOrdenCerrada)

	o, _ := f.ordenes.FindByID(context.Background(), ordenID)
	assert.Empty(t, o.Items)
}

func TestAgregarItems_CajaCerrada(t *testing.T) {
	f := newFixture(t, true)
	sesion := f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)
	f.cerrarCaja(t, sesion)

	_, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{itemLibre("bebida", "Tinto", 1, 200000)},
	})
	assert.ErrorIs(t, err, domain.ErrCajaCerrada)
}

func TestAgregarItems_OtroRestaurante(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	// the intruder has its own open caja so the gate lets it through
	otro := uuid.New()
	_, err := f.cajaSvc.Abrir(context.Background(), otro, f.usuario, dto.AbrirCajaRequest{})
	require.NoError(t, err)

	_, err = f.ordenSvc.AgregarItems(context.Background(), otro, ordenID, dto.AgregarItemsRequest{
		Items: []dto.ItemOrdenRequest{itemLibre("bebida", "Tinto", 1, 200000)},
	})
	assert.ErrorIs(t, err, domain.ErrNoEncontrado)

	_, err = f.ordenSvc.Obtener(context.Background(), otro, ordenID)
	assert.ErrorIs(t, err, domain.ErrNoEncontrado)
}

func TestAgregarItems_Concurrente(t *testing.T) {
	f := newFixture(t, true)
	f.abrirCaja(t, 0)
	ordenID := abrirMesa(t, f, 1)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ordenSvc.AgregarItems(context.Background(), f.rid, ordenID, dto.AgregarItemsRequest{
				Items: []dto.ItemOrdenRequest{itemLibre("bebida", "Agua", 1, 150000)},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	o, err := f.ordenSvc.Obtener(context.Background(), f.rid, ordenID)
	require.NoError(t, err)
	assert.Len(t, o.Items, n)
	assert.Equal(t, int64(n*150000), o.Total)
}
