package model

import (
	"time"

	"github.com/google/uuid"
)

// Producto is a menu catalog entry. Order items may reference it; the item
// copies name, kind and price at the time it is added so later catalog edits
// never rewrite an existing order.
type Producto struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Descripcion   *string
	// Tipo groups products by kind: "plato" | "bebida" | "postre" | "adicional" | …
	Tipo      string `gorm:"type:varchar(40);not null"`
	Precio    int64  `gorm:"not null"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Producto) TableName() string { return "productos" }
