package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores restaurant staff with role-based access.
// Rol: "mesero" | "cajero" | "administrador"
type Usuario struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Username      string    `gorm:"uniqueIndex;not null"`
	Nombre        string    `gorm:"not null"`
	Email         *string
	PasswordHash  string `gorm:"not null"`
	Rol           string `gorm:"type:varchar(20);not null"`
	Activo        bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Usuario) TableName() string { return "usuarios" }
