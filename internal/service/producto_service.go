package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrProductoInactivo is returned when an order item references a product
// that was withdrawn from the menu.
var ErrProductoInactivo = errors.New("el producto no esta disponible")

// ProductoService manages the menu catalog. The active catalog of each
// restaurant is cached in Redis; writes invalidate it.
type ProductoService interface {
	Crear(ctx context.Context, restauranteID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, restauranteID, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, restauranteID uuid.UUID, incluirInactivos bool) ([]dto.ProductoResponse, error)
	Desactivar(ctx context.Context, restauranteID, id uuid.UUID) error
	// Buscar resolves an active product for an order item.
	Buscar(ctx context.Context, restauranteID, id uuid.UUID) (*model.Producto, error)
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewProductoService builds the catalog service. rdb may be nil (no caching).
func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client, ttl time.Duration) ProductoService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &productoService{repo: repo, rdb: rdb, ttl: ttl}
}

func catalogoKey(restauranteID uuid.UUID) string { return "catalogo:" + restauranteID.String() }

func (s *productoService) Crear(ctx context.Context, restauranteID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if !domain.MontoValido(req.Precio) {
		return nil, domain.ErrMontoInvalido
	}
	p := &model.Producto{
		RestauranteID: restauranteID,
		Nombre:        req.Nombre,
		Descripcion:   req.Descripcion,
		Tipo:          req.Tipo,
		Precio:        req.Precio,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, persistErr(err)
	}
	s.invalidar(ctx, restauranteID)
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Obtener(ctx context.Context, restauranteID, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, restauranteID, id)
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, restauranteID uuid.UUID, incluirInactivos bool) ([]dto.ProductoResponse, error) {
	var (
		productos []model.Producto
		err       error
	)
	if incluirInactivos {
		productos, err = s.repo.List(ctx, restauranteID, true)
	} else {
		productos, err = s.activos(ctx, restauranteID)
	}
	if err != nil {
		return nil, persistErr(err)
	}
	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = productoToResponse(&productos[i])
	}
	return resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, restauranteID, id uuid.UUID) error {
	if _, err := s.find(ctx, restauranteID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return persistErr(err)
	}
	s.invalidar(ctx, restauranteID)
	return nil
}

func (s *productoService) Buscar(ctx context.Context, restauranteID, id uuid.UUID) (*model.Producto, error) {
	activos, err := s.activos(ctx, restauranteID)
	if err != nil {
		return nil, persistErr(err)
	}
	for i := range activos {
		if activos[i].ID == id {
			return &activos[i], nil
		}
	}
	// not in the active catalog: tell "withdrawn" from "never existed"
	if _, err := s.find(ctx, restauranteID, id); err != nil {
		return nil, err
	}
	return nil, ErrProductoInactivo
}

func (s *productoService) find(ctx context.Context, restauranteID, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistErr(err)
	}
	if p.RestauranteID != restauranteID {
		return nil, persistErr(repository.ErrNotFound)
	}
	return p, nil
}

// activos is a read-through cache over the active catalog. Redis failures
// fall back to the database.
func (s *productoService) activos(ctx context.Context, restauranteID uuid.UUID) ([]model.Producto, error) {
	key := catalogoKey(restauranteID)
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var cached []model.Producto
			if jErr := json.Unmarshal(raw, &cached); jErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
	}

	productos, err := s.repo.List(ctx, restauranteID, false)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if data, jErr := json.Marshal(productos); jErr == nil {
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
			}
		}
	}
	return productos, nil
}

func (s *productoService) invalidar(ctx context.Context, restauranteID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, catalogoKey(restauranteID)).Err(); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
