package domain

import (
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
)

// Order states.
const (
	OrdenAbierta = "abierta"
	OrdenCerrada = "cerrada"
)

// ValidarItem enforces the per-line input constraints, including a line total
// within MontoMaximo.
func ValidarItem(cantidad int, precioUnitario int64) error {
	if cantidad < 1 || cantidad > CantidadMaxima || !MontoValido(precioUnitario) {
		return ErrItemInvalido
	}
	if precioUnitario != 0 && int64(cantidad) > MontoMaximo/precioUnitario {
		return ErrItemInvalido
	}
	return nil
}

// NuevoItem builds a line with its derived total.
func NuevoItem(tipo, nombre string, cantidad int, precioUnitario int64) (model.ItemOrden, error) {
	if err := ValidarItem(cantidad, precioUnitario); err != nil {
		return model.ItemOrden{}, err
	}
	return model.ItemOrden{
		Tipo:           tipo,
		Nombre:         nombre,
		Cantidad:       cantidad,
		PrecioUnitario: precioUnitario,
		PrecioTotal:    int64(cantidad) * precioUnitario,
	}, nil
}

// TotalOrden folds cantidad * precio_unitario over the items. A total above
// MontoMaximo is ErrMontoFueraDeRango.
func TotalOrden(items []model.ItemOrden) (int64, error) {
	var total int64
	for _, it := range items {
		if err := ValidarItem(it.Cantidad, it.PrecioUnitario); err != nil {
			return 0, err
		}
		t, err := sumar(total, int64(it.Cantidad)*it.PrecioUnitario)
		if err != nil || t > MontoMaximo {
			return 0, ErrMontoFueraDeRango
		}
		total = t
	}
	return total, nil
}

// AgregarItems appends items to an open order and recomputes its total.
// The order is left untouched when any item is invalid.
func AgregarItems(o *model.Orden, items []model.ItemOrden) error {
	if o.Estado != OrdenAbierta {
		return ErrOrdenCerrada
	}
	for i := range items {
		if err := ValidarItem(items[i].Cantidad, items[i].PrecioUnitario); err != nil {
			return err
		}
	}
	all := append(append(make([]model.ItemOrden, 0, len(o.Items)+len(items)), o.Items...), items...)
	total, err := TotalOrden(all)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].PrecioTotal = int64(items[i].Cantidad) * items[i].PrecioUnitario
		items[i].OrdenID = o.ID
	}
	o.Items = append(o.Items, items...)
	o.Total = total
	return nil
}

// CerrarOrden freezes the order. A second call returns ErrOrdenYaCerrada and
// leaves every field as it was.
func CerrarOrden(o *model.Orden, now time.Time) error {
	if o.Estado == OrdenCerrada {
		return ErrOrdenYaCerrada
	}
	total, err := TotalOrden(o.Items)
	if err != nil {
		return err
	}
	o.Total = total
	o.Estado = OrdenCerrada
	o.ClosedAt = &now
	return nil
}
