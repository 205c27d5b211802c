package service

import (
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/google/uuid"
)

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mesaToResponse(m *model.Mesa) dto.MesaResponse {
	return dto.MesaResponse{
		ID:            m.ID.String(),
		Numero:        m.Numero,
		Nombre:        m.Nombre,
		Zona:          m.Zona,
		Capacidad:     m.Capacidad,
		Estado:        m.Estado,
		OrdenActivaID: uuidPtrString(m.OrdenActivaID),
		Notas:         m.Notas,
	}
}

func ordenToResponse(o *model.Orden) dto.OrdenResponse {
	items := make([]dto.ItemOrdenResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = dto.ItemOrdenResponse{
			ID:             it.ID.String(),
			Tipo:           it.Tipo,
			Nombre:         it.Nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			PrecioTotal:    it.PrecioTotal,
			ProductoID:     uuidPtrString(it.ProductoID),
			Notas:          it.Notas,
		}
	}
	return dto.OrdenResponse{
		ID:         o.ID.String(),
		NumeroMesa: o.NumeroMesa,
		Estado:     o.Estado,
		Total:      o.Total,
		Items:      items,
		CreatedAt:  fmtTime(o.CreatedAt),
		ClosedAt:   fmtTimePtr(o.ClosedAt),
	}
}

func cierreToResponse(c model.CierreCaja) dto.CierreCajaResponse {
	return dto.CierreCajaResponse{
		TotalVentas:     c.TotalVentas,
		TotalEfectivo:   c.TotalEfectivo,
		TotalTarjeta:    c.TotalTarjeta,
		TotalDigital:    c.TotalDigital,
		TotalGastos:     c.TotalGastos,
		EfectivoTeorico: c.EfectivoTeorico,
	}
}

func sesionToResponse(s *model.SesionCaja) dto.SesionCajaResponse {
	resp := dto.SesionCajaResponse{
		ID:            s.ID.String(),
		RestauranteID: s.RestauranteID.String(),
		Estado:        s.Estado,
		MontoInicial:  s.MontoInicial,
		NotasApertura: s.NotasApertura,
		NotasCierre:   s.NotasCierre,
		OpenedAt:      fmtTime(s.OpenedAt),
		ClosedAt:      fmtTimePtr(s.ClosedAt),
	}
	if s.Estado == domain.SesionCerrada {
		c := cierreToResponse(s.Cierre)
		resp.Cierre = &c
	}
	return resp
}

// diferenciaToResponse is nil unless a cash count was declared at close.
func diferenciaToResponse(s *model.SesionCaja, teorico int64) *dto.DiferenciaResponse {
	if s.EfectivoContado == nil {
		return nil
	}
	diff, pct, clasif := domain.Reconciliar(teorico, *s.EfectivoContado)
	return &dto.DiferenciaResponse{
		EfectivoContado: *s.EfectivoContado,
		Monto:           diff,
		Porcentaje:      pct.StringFixed(2),
		Clasificacion:   clasif,
	}
}

func transaccionToResponse(t *model.Transaccion) dto.TransaccionResponse {
	return dto.TransaccionResponse{
		ID:          t.ID.String(),
		OrdenID:     uuidPtrString(t.OrdenID),
		TipoOrden:   t.TipoOrden,
		MetodoPago:  t.MetodoPago,
		Total:       t.Total,
		ProcessedAt: fmtTime(t.ProcessedAt),
	}
}

func gastoToResponse(g *model.Gasto) dto.GastoResponse {
	return dto.GastoResponse{
		ID:           g.ID.String(),
		Categoria:    g.Categoria,
		Monto:        g.Monto,
		Notas:        g.Notas,
		RegisteredAt: fmtTime(g.RegisteredAt),
	}
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Tipo:        p.Tipo,
		Precio:      p.Precio,
		Activo:      p.Activo,
	}
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:            u.ID.String(),
		RestauranteID: u.RestauranteID.String(),
		Username:      u.Username,
		Nombre:        u.Nombre,
		Email:         u.Email,
		Rol:           u.Rol,
		Activo:        u.Activo,
	}
}
