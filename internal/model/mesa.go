package model

import (
	"time"

	"github.com/google/uuid"
)

// Mesa is a physical table of a restaurant.
// Estado: "libre" | "ocupada" | "reservada" | "mantenimiento" | "inactiva"
// OrdenActivaID is only ever set while Estado = "ocupada"; both columns are
// written exclusively by the table state machine (MesaService).
type Mesa struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_mesas_restaurante_numero"`
	Numero        int        `gorm:"not null;uniqueIndex:idx_mesas_restaurante_numero"`
	Nombre        *string    `gorm:"type:varchar(60)"`
	Zona          string     `gorm:"type:varchar(60);not null;default:'principal'"`
	Capacidad     int        `gorm:"not null;default:4"`
	Estado        string     `gorm:"type:varchar(20);not null;default:'libre';index"`
	OrdenActivaID *uuid.UUID `gorm:"type:uuid"`
	Notas         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides GORM's default pluralization (mesas).
func (Mesa) TableName() string { return "mesas" }
