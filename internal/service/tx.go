package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// domainErrs are returned to callers as they are; anything else coming out of
// the persistence gateway is reported as ErrPersistencia.
var domainErrs = []error{
	domain.ErrCajaCerrada,
	domain.ErrEstadoMesaInvalido,
	domain.ErrMesaOcupada,
	domain.ErrOrdenCerrada,
	domain.ErrOrdenYaCerrada,
	domain.ErrOrdenVacia,
	domain.ErrSesionYaAbierta,
	domain.ErrSesionNoAbierta,
	domain.ErrPersistencia,
	domain.ErrNoEncontrado,
	domain.ErrItemInvalido,
	domain.ErrMetodoPagoInvalido,
	domain.ErrMontoInvalido,
	domain.ErrMontoFueraDeRango,
	domain.ErrTipoOrdenInvalido,
	ErrCredenciales,
	ErrUsuarioDuplicado,
	ErrProductoInactivo,
	ErrMesaDuplicada,
	ErrMesaInvalida,
}

// persistErr classifies an error leaving a service. Not-found lookups become
// ErrNoEncontrado, known kinds pass through, the rest is ErrPersistencia.
func persistErr(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range domainErrs {
		if errors.Is(err, k) {
			return err
		}
	}
	if repository.IsNotFound(err) {
		return domain.ErrNoEncontrado
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistencia, err)
}
