package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial int64   `json:"monto_inicial" validate:"min=0,max=10000000000000"`
	Notas        *string `json:"notas"         validate:"omitempty,max=500"`
}

type RegistrarTransaccionRequest struct {
	TipoOrden  string `json:"tipo_orden"  validate:"required,oneof=mesa para_llevar domicilio"`
	MetodoPago string `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta digital"`
	Monto      int64  `json:"monto"       validate:"min=0,max=10000000000000"`
}

type RegistrarGastoRequest struct {
	Categoria string  `json:"categoria" validate:"required,min=2,max=40"`
	Monto     int64   `json:"monto"     validate:"required,gt=0,max=10000000000000"`
	Notas     *string `json:"notas"     validate:"omitempty,max=500"`
}

// CerrarCajaRequest closes a session. EfectivoContado is optional: when sent,
// the difference against the theoretical cash is computed and stored.
type CerrarCajaRequest struct {
	Notas           *string `json:"notas"            validate:"omitempty,max=500"`
	EfectivoContado *int64  `json:"efectivo_contado" validate:"omitempty,min=0,max=10000000000000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreCajaResponse struct {
	TotalVentas     int64 `json:"total_ventas"`
	TotalEfectivo   int64 `json:"total_efectivo"`
	TotalTarjeta    int64 `json:"total_tarjeta"`
	TotalDigital    int64 `json:"total_digital"`
	TotalGastos     int64 `json:"total_gastos"`
	EfectivoTeorico int64 `json:"efectivo_teorico"`
}

type DiferenciaResponse struct {
	EfectivoContado int64  `json:"efectivo_contado"`
	Monto           int64  `json:"monto"`
	Porcentaje      string `json:"porcentaje"`
	Clasificacion   string `json:"clasificacion"` // normal | advertencia | critico
}

type SesionCajaResponse struct {
	ID            string  `json:"id"`
	RestauranteID string  `json:"restaurante_id"`
	Estado        string  `json:"estado"`
	MontoInicial  int64   `json:"monto_inicial"`
	NotasApertura *string `json:"notas_apertura"`
	NotasCierre   *string `json:"notas_cierre"`
	OpenedAt      string  `json:"opened_at"`
	ClosedAt      *string `json:"closed_at"`
	// Snapshot stored at close; nil while the session is open.
	Cierre *CierreCajaResponse `json:"cierre,omitempty"`
}

type CerrarCajaResponse struct {
	Sesion     SesionCajaResponse  `json:"sesion"`
	Cierre     CierreCajaResponse  `json:"cierre"`
	Diferencia *DiferenciaResponse `json:"diferencia"`
}

type TransaccionResponse struct {
	ID          string  `json:"id"`
	OrdenID     *string `json:"orden_id"`
	TipoOrden   string  `json:"tipo_orden"`
	MetodoPago  string  `json:"metodo_pago"`
	Total       int64   `json:"total"`
	ProcessedAt string  `json:"processed_at"`
}

type GastoResponse struct {
	ID           string  `json:"id"`
	Categoria    string  `json:"categoria"`
	Monto        int64   `json:"monto"`
	Notas        *string `json:"notas"`
	RegisteredAt string  `json:"registered_at"`
}

type DetalleCajaResponse struct {
	Sesion        SesionCajaResponse    `json:"sesion"`
	Cierre        CierreCajaResponse    `json:"cierre"`
	Diferencia    *DiferenciaResponse   `json:"diferencia"`
	Transacciones []TransaccionResponse `json:"transacciones"`
	Gastos        []GastoResponse       `json:"gastos"`
}

type EstadoCajaResponse struct {
	Abierta  bool    `json:"abierta"`
	SesionID *string `json:"sesion_id"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
