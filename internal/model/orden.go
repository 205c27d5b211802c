package model

import (
	"time"

	"github.com/google/uuid"
)

// Orden is a tab opened against a table.
// Estado: "abierta" | "cerrada". A closed order is never mutated again.
// Total always equals SUM(items.precio_total); it is rewritten from the items
// inside the same transaction that inserts them.
type Orden struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID  `gorm:"type:uuid;not null;index"`
	NumeroMesa    int        `gorm:"not null"`
	MeseroID      *uuid.UUID `gorm:"type:uuid"`
	Estado        string     `gorm:"type:varchar(20);not null;default:'abierta'"`
	Total         int64      `gorm:"not null;default:0"`
	CreatedAt     time.Time
	ClosedAt      *time.Time

	Items []ItemOrden `gorm:"foreignKey:OrdenID;constraint:OnDelete:CASCADE"`
}

func (Orden) TableName() string { return "ordenes" }

// ItemOrden is a single purchasable line owned by exactly one Orden.
// Amounts are integers in the currency minor unit.
type ItemOrden struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo           string     `gorm:"type:varchar(40);not null"`
	Nombre         string     `gorm:"not null"`
	Cantidad       int        `gorm:"not null"`
	PrecioUnitario int64      `gorm:"not null"`
	PrecioTotal    int64      `gorm:"not null"`
	ProductoID     *uuid.UUID `gorm:"type:uuid"`
	Notas          *string
	CreatedAt      time.Time
}

func (ItemOrden) TableName() string { return "items_orden" }
