package model

import (
	"time"

	"github.com/google/uuid"
)

// SesionCaja represents the lifecycle of a cash register session ("caja").
// Estado: "abierta" | "cerrada". At most one "abierta" per restaurant,
// backed by the partial unique index idx_sesiones_caja_una_abierta.
type SesionCaja struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID  `gorm:"type:uuid;not null;index"`
	AbiertaPor    uuid.UUID  `gorm:"type:uuid;not null"`
	CerradaPor    *uuid.UUID `gorm:"type:uuid"`
	MontoInicial  int64      `gorm:"not null"`
	Estado        string     `gorm:"type:varchar(20);not null;default:'abierta'"`
	NotasApertura *string
	NotasCierre   *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	// Snapshot written at close (zero while open). Detail views always
	// recompute it from the transactions and expenses; these columns serve
	// listings only.
	Cierre CierreCaja `gorm:"embedded;embeddedPrefix:cierre_"`

	// Counted-cash reconciliation, only when the cashier declared a count.
	EfectivoContado *int64
	Diferencia      *int64
	// ClasificacionDiferencia: "normal" | "advertencia" | "critico"
	ClasificacionDiferencia *string `gorm:"type:varchar(20)"`

	Transacciones []Transaccion `gorm:"foreignKey:SesionCajaID"`
	Gastos        []Gasto       `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// CierreCaja is the closing aggregate of a session. It is derived data:
// domain.CalcularCierre recomputes it from the same rows at any time.
type CierreCaja struct {
	TotalVentas     int64
	TotalEfectivo   int64
	TotalTarjeta    int64
	TotalDigital    int64
	TotalGastos     int64
	EfectivoTeorico int64
}

// Transaccion is an immutable completed sale recorded against an open session.
// TipoOrden: "mesa" | "para_llevar" | "domicilio"
// MetodoPago: "efectivo" | "tarjeta" | "digital"
type Transaccion struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrdenID      *uuid.UUID `gorm:"type:uuid;index"`
	TipoOrden    string     `gorm:"type:varchar(20);not null"`
	MetodoPago   string     `gorm:"type:varchar(20);not null"`
	Total        int64      `gorm:"not null"`
	UsuarioID    *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt  time.Time  `gorm:"not null"`
}

func (Transaccion) TableName() string { return "transacciones_caja" }

// Gasto is an immutable cash outflow recorded against an open session.
type Gasto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Categoria    string    `gorm:"type:varchar(40);not null"`
	Monto        int64     `gorm:"not null"`
	Notas        *string
	RegisteredAt time.Time `gorm:"not null"`
}

func (Gasto) TableName() string { return "gastos_caja" }
