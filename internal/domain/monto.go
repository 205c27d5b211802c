package domain

import "math"

// Upper bounds for any single amount (prices, line and order totals,
// transactions, expenses, opening and counted cash) and for a line quantity.
// With both bounds a line total stays far from int64 overflow.
const (
	MontoMaximo    int64 = 10_000_000_000_000
	CantidadMaxima       = 10_000
)

// MontoValido reports whether m is a storable single amount.
func MontoValido(m int64) bool {
	return m >= 0 && m <= MontoMaximo
}

// sumar adds two amounts and fails instead of wrapping around.
func sumar(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrMontoFueraDeRango
	}
	return a + b, nil
}

// restar is sumar for a - b.
func restar(a, b int64) (int64, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, ErrMontoFueraDeRango
	}
	return a - b, nil
}
