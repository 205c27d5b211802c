package service

import (
	"context"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/google/uuid"
)

// SessionGate answers whether a restaurant may take orders right now.
// Every call is a fresh read; nothing is cached.
type SessionGate interface {
	EstaAbierta(ctx context.Context, restauranteID uuid.UUID) (bool, error)
	// Exigir returns the open session or ErrCajaCerrada.
	Exigir(ctx context.Context, restauranteID uuid.UUID) (*model.SesionCaja, error)
}

type sessionGate struct {
	repo repository.CajaRepository
}

func NewSessionGate(repo repository.CajaRepository) SessionGate {
	return &sessionGate{repo: repo}
}

func (g *sessionGate) EstaAbierta(ctx context.Context, restauranteID uuid.UUID) (bool, error) {
	_, err := g.repo.FindSesionAbierta(ctx, restauranteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, persistErr(err)
	}
	return true, nil
}

func (g *sessionGate) Exigir(ctx context.Context, restauranteID uuid.UUID) (*model.SesionCaja, error) {
	s, err := g.repo.FindSesionAbierta(ctx, restauranteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrCajaCerrada
		}
		return nil, persistErr(err)
	}
	return s, nil
}
