package domain

import (
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	MetodoEfectivo = "efectivo"
	MetodoTarjeta  = "tarjeta"
	MetodoDigital  = "digital"
)

// Order types of a transaction.
const (
	TipoOrdenMesa       = "mesa"
	TipoOrdenParaLlevar = "para_llevar"
	TipoOrdenDomicilio  = "domicilio"
)

// Session states.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// TipoOrdenValido reports whether t is a known order type.
func TipoOrdenValido(t string) bool {
	switch t {
	case TipoOrdenMesa, TipoOrdenParaLlevar, TipoOrdenDomicilio:
		return true
	}
	return false
}

// MetodoPagoValido reports whether m is a known payment method.
func MetodoPagoValido(m string) bool {
	switch m {
	case MetodoEfectivo, MetodoTarjeta, MetodoDigital:
		return true
	}
	return false
}

// CalcularCierre folds transactions and expenses into the closing aggregate.
// It is a pure function of its inputs: the same rows always give the same
// result, and methods without transactions report zero. Sums that would not
// fit in an int64 are ErrMontoFueraDeRango.
func CalcularCierre(montoInicial int64, transacciones []model.Transaccion, gastos []model.Gasto) (model.CierreCaja, error) {
	var (
		c   model.CierreCaja
		err error
	)
	for _, t := range transacciones {
		if c.TotalVentas, err = sumar(c.TotalVentas, t.Total); err != nil {
			return model.CierreCaja{}, err
		}
		switch t.MetodoPago {
		case MetodoEfectivo:
			c.TotalEfectivo, err = sumar(c.TotalEfectivo, t.Total)
		case MetodoTarjeta:
			c.TotalTarjeta, err = sumar(c.TotalTarjeta, t.Total)
		case MetodoDigital:
			c.TotalDigital, err = sumar(c.TotalDigital, t.Total)
		}
		if err != nil {
			return model.CierreCaja{}, err
		}
	}
	for _, g := range gastos {
		if c.TotalGastos, err = sumar(c.TotalGastos, g.Monto); err != nil {
			return model.CierreCaja{}, err
		}
	}
	teorico, err := sumar(montoInicial, c.TotalEfectivo)
	if err == nil {
		teorico, err = restar(teorico, c.TotalGastos)
	}
	if err != nil {
		return model.CierreCaja{}, err
	}
	c.EfectivoTeorico = teorico
	return c, nil
}

// Difference classifications of a counted-cash reconciliation.
const (
	DiferenciaNormal      = "normal"
	DiferenciaAdvertencia = "advertencia"
	DiferenciaCritico     = "critico"
)

// Reconciliar compares counted cash against the theoretical figure and returns
// the difference (contado - teorico), its percentage of the theoretical figure
// rounded to two decimals, and its classification:
// normal |pct| <= 1, advertencia <= 5, critico > 5.
// With a theoretical figure of zero any non-zero difference is critico.
func Reconciliar(teorico, contado int64) (int64, decimal.Decimal, string) {
	diff, err := restar(contado, teorico)
	if err != nil {
		return 0, decimal.Zero, DiferenciaCritico
	}
	if teorico == 0 {
		if diff == 0 {
			return 0, decimal.Zero, DiferenciaNormal
		}
		return diff, decimal.Zero, DiferenciaCritico
	}
	pct := decimal.NewFromInt(diff).
		Div(decimal.NewFromInt(teorico)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return diff, pct, DiferenciaNormal
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return diff, pct, DiferenciaAdvertencia
	default:
		return diff, pct, DiferenciaCritico
	}
}

// FormatearMonto renders a minor-unit amount with two decimals ("1590000" -> "15900.00").
// Presentation only: reports and receipts call it, the core never does.
func FormatearMonto(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
