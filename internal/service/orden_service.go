package service

import (
	"context"
	"fmt"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrdenService interface {
	AgregarItems(ctx context.Context, restauranteID, ordenID uuid.UUID, req dto.AgregarItemsRequest) (*dto.OrdenResponse, error)
	Obtener(ctx context.Context, restauranteID, ordenID uuid.UUID) (*dto.OrdenResponse, error)
}

type ordenService struct {
	repo     repository.OrdenRepository
	gate     SessionGate
	catalogo ProductoService
	events   EventPublisher
}

func NewOrdenService(repo repository.OrdenRepository, gate SessionGate, catalogo ProductoService, events EventPublisher) OrdenService {
	return &ordenService{repo: repo, gate: gate, catalogo: catalogo, events: events}
}

// ── AgregarItems ─────────────────────────────────────────────────────────────
// The order row is locked while items are inserted and the total is rewritten
// from SUM(precio_total), so concurrent adders queue up instead of racing on
// the total.

func (s *ordenService) AgregarItems(ctx context.Context, restauranteID, ordenID uuid.UUID, req dto.AgregarItemsRequest) (*dto.OrdenResponse, error) {
	if _, err := s.gate.Exigir(ctx, restauranteID); err != nil {
		return nil, err
	}
	nuevos, err := resolverItems(ctx, s.catalogo, restauranteID, req.Items)
	if err != nil {
		return nil, err
	}

	var numeroMesa int
	var total int64
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		o, err := s.repo.FindForUpdateTx(tx, ordenID)
		if err != nil {
			return err
		}
		if o.RestauranteID != restauranteID {
			return domain.ErrNoEncontrado
		}
		if err := domain.AgregarItems(o, nuevos); err != nil {
			return err
		}
		if err := s.repo.CreateItemsTx(tx, nuevos); err != nil {
			return err
		}
		total, err = s.repo.RecalcularTotalTx(tx, ordenID)
		numeroMesa = o.NumeroMesa
		return err
	})
	if err != nil {
		return nil, persistErr(err)
	}

	log.Info().
		Str("restaurante_id", restauranteID.String()).
		Str("orden_id", ordenID.String()).
		Int("items", len(nuevos)).
		Int64("total", total).
		Msg("items agregados")
	publish(ctx, s.events, Evento{
		Tipo: EventoOrdenItems, RestauranteID: restauranteID,
		NumeroMesa: numeroMesa, OrdenID: &ordenID, Total: &total,
	})

	return s.Obtener(ctx, restauranteID, ordenID)
}

func (s *ordenService) Obtener(ctx context.Context, restauranteID, ordenID uuid.UUID) (*dto.OrdenResponse, error) {
	o, err := s.repo.FindByID(ctx, ordenID)
	if err != nil {
		return nil, persistErr(err)
	}
	if o.RestauranteID != restauranteID {
		return nil, domain.ErrNoEncontrado
	}
	resp := ordenToResponse(o)
	return &resp, nil
}

// resolverItems turns request lines into order items. Catalog references take
// name, kind and price from the active menu; free lines must carry all three.
func resolverItems(ctx context.Context, catalogo ProductoService, restauranteID uuid.UUID, reqs []dto.ItemOrdenRequest) ([]model.ItemOrden, error) {
	items := make([]model.ItemOrden, 0, len(reqs))
	for i, r := range reqs {
		var (
			it  model.ItemOrden
			err error
		)
		if r.ProductoID != nil {
			pid, pErr := uuid.Parse(*r.ProductoID)
			if pErr != nil {
				return nil, fmt.Errorf("%w: item %d: producto_id", domain.ErrItemInvalido, i)
			}
			p, bErr := catalogo.Buscar(ctx, restauranteID, pid)
			if bErr != nil {
				return nil, bErr
			}
			it, err = domain.NuevoItem(p.Tipo, p.Nombre, r.Cantidad, p.Precio)
			it.ProductoID = &pid
		} else {
			if r.Tipo == "" || r.Nombre == "" || r.PrecioUnitario == nil {
				return nil, fmt.Errorf("%w: item %d: tipo, nombre y precio_unitario son obligatorios", domain.ErrItemInvalido, i)
			}
			it, err = domain.NuevoItem(r.Tipo, r.Nombre, r.Cantidad, *r.PrecioUnitario)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: item %d", err, i)
		}
		it.Notas = r.Notas
		items = append(items, it)
	}
	return items, nil
}
