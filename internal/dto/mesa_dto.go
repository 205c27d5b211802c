package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMesaRequest struct {
	Numero    int     `json:"numero"    validate:"required,min=1"`
	Nombre    *string `json:"nombre"    validate:"omitempty,max=60"`
	Zona      string  `json:"zona"      validate:"required,min=1,max=60"`
	Capacidad int     `json:"capacidad" validate:"required,min=1"`
}

// ZonaConfig describes one block of tables created during initial configuration.
type ZonaConfig struct {
	Zona      string `json:"zona"      validate:"required,min=1,max=60"`
	Cantidad  int    `json:"cantidad"  validate:"required,min=1,max=200"`
	Capacidad int    `json:"capacidad" validate:"required,min=1"`
}

type ConfigurarMesasRequest struct {
	Zonas []ZonaConfig `json:"zonas" validate:"required,min=1,dive"`
}

type AbrirOrdenRequest struct {
	Items []ItemOrdenRequest `json:"items" validate:"omitempty,dive"`
}

type CobrarMesaRequest struct {
	MetodoPago string `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta digital"`
}

type CambiarEstadoMesaRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=libre reservada mantenimiento inactiva"`
	Notas  *string `json:"notas"  validate:"omitempty,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MesaResponse struct {
	ID            string  `json:"id"`
	Numero        int     `json:"numero"`
	Nombre        *string `json:"nombre"`
	Zona          string  `json:"zona"`
	Capacidad     int     `json:"capacidad"`
	Estado        string  `json:"estado"`
	OrdenActivaID *string `json:"orden_activa_id"`
	Notas         *string `json:"notas"`
}

type MesaDetalleResponse struct {
	Mesa  MesaResponse   `json:"mesa"`
	Orden *OrdenResponse `json:"orden"`
}

type CobroResponse struct {
	Mesa        MesaResponse        `json:"mesa"`
	Orden       OrdenResponse       `json:"orden"`
	Transaccion TransaccionResponse `json:"transaccion"`
}
