package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	// ErrMesaDuplicada is returned when a table number is already taken.
	ErrMesaDuplicada = errors.New("ya existe una mesa con ese numero")
	ErrMesaInvalida  = errors.New("numero y capacidad de la mesa deben ser mayores que cero")
)

// MesaService is the only writer of a table's estado and orden_activa_id.
type MesaService interface {
	Listar(ctx context.Context, restauranteID uuid.UUID) ([]dto.MesaResponse, error)
	Detalle(ctx context.Context, restauranteID uuid.UUID, numero int) (*dto.MesaDetalleResponse, error)
	Crear(ctx context.Context, restauranteID uuid.UUID, req dto.CrearMesaRequest) (*dto.MesaResponse, error)
	Configurar(ctx context.Context, restauranteID uuid.UUID, req dto.ConfigurarMesasRequest) ([]dto.MesaResponse, error)
	AbrirOrden(ctx context.Context, restauranteID uuid.UUID, numero int, meseroID uuid.UUID, req dto.AbrirOrdenRequest) (*dto.MesaDetalleResponse, error)
	Cobrar(ctx context.Context, restauranteID uuid.UUID, numero int, usuarioID uuid.UUID, req dto.CobrarMesaRequest) (*dto.CobroResponse, error)
	CambiarEstado(ctx context.Context, restauranteID uuid.UUID, numero int, req dto.CambiarEstadoMesaRequest) (*dto.MesaResponse, error)
}

// MesaDeps groups the collaborators of MesaService.
type MesaDeps struct {
	Mesas    repository.MesaRepository
	Ordenes  repository.OrdenRepository
	Caja     repository.CajaRepository
	Gate     SessionGate
	Catalogo ProductoService
	Events   EventPublisher // optional
	// PermitirCobroSinItems records a zero-amount transaction when a table
	// with an empty order is settled; false rejects it with ErrOrdenVacia.
	PermitirCobroSinItems bool
}

type mesaService struct {
	MesaDeps
}

func NewMesaService(deps MesaDeps) MesaService {
	return &mesaService{MesaDeps: deps}
}

// ── Registry ──────────────────────────────────────────────────────────────────

func (s *mesaService) Listar(ctx context.Context, restauranteID uuid.UUID) ([]dto.MesaResponse, error) {
	mesas, err := s.Mesas.List(ctx, restauranteID)
	if err != nil {
		return nil, persistErr(err)
	}
	resp := make([]dto.MesaResponse, len(mesas))
	for i := range mesas {
		resp[i] = mesaToResponse(&mesas[i])
	}
	return resp, nil
}

func (s *mesaService) Detalle(ctx context.Context, restauranteID uuid.UUID, numero int) (*dto.MesaDetalleResponse, error) {
	mesa, err := s.Mesas.FindByNumero(ctx, restauranteID, numero)
	if err != nil {
		return nil, persistErr(err)
	}
	resp := &dto.MesaDetalleResponse{Mesa: mesaToResponse(mesa)}
	if mesa.OrdenActivaID == nil {
		return resp, nil
	}
	orden, err := s.Ordenes.FindByID(ctx, *mesa.OrdenActivaID)
	if err != nil {
		return nil, persistErr(err)
	}
	o := ordenToResponse(orden)
	resp.Orden = &o
	return resp, nil
}

func (s *mesaService) Crear(ctx context.Context, restauranteID uuid.UUID, req dto.CrearMesaRequest) (*dto.MesaResponse, error) {
	if req.Numero < 1 || req.Capacidad < 1 {
		return nil, ErrMesaInvalida
	}
	mesa := &model.Mesa{
		RestauranteID: restauranteID,
		Numero:        req.Numero,
		Nombre:        req.Nombre,
		Zona:          req.Zona,
		Capacidad:     req.Capacidad,
		Estado:        domain.MesaLibre,
	}
	if err := s.Mesas.Create(ctx, mesa); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrMesaDuplicada
		}
		return nil, persistErr(err)
	}
	resp := mesaToResponse(mesa)
	return &resp, nil
}

// Configurar creates tables in bulk, one block per zone, numbered after the
// highest existing number.
func (s *mesaService) Configurar(ctx context.Context, restauranteID uuid.UUID, req dto.ConfigurarMesasRequest) ([]dto.MesaResponse, error) {
	max, err := s.Mesas.MaxNumero(ctx, restauranteID)
	if err != nil {
		return nil, persistErr(err)
	}

	var mesas []model.Mesa
	next := max + 1
	for _, z := range req.Zonas {
		for i := 0; i < z.Cantidad; i++ {
			mesas = append(mesas, model.Mesa{
				RestauranteID: restauranteID,
				Numero:        next,
				Zona:          z.Zona,
				Capacidad:     z.Capacidad,
				Estado:        domain.MesaLibre,
			})
			next++
		}
	}
	if err := s.Mesas.CreateBatch(ctx, mesas); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrMesaDuplicada
		}
		return nil, persistErr(err)
	}

	log.Info().Str("restaurante_id", restauranteID.String()).Int("mesas", len(mesas)).Msg("mesas configuradas")
	resp := make([]dto.MesaResponse, len(mesas))
	for i := range mesas {
		resp[i] = mesaToResponse(&mesas[i])
	}
	return resp, nil
}

// ── AbrirOrden ────────────────────────────────────────────────────────────────
// The conditional libre -> ocupada update is the decision point: of two
// devices opening the same table, the one whose update touches zero rows gets
// ErrEstadoMesaInvalido and nothing is written for it.

func (s *mesaService) AbrirOrden(ctx context.Context, restauranteID uuid.UUID, numero int, meseroID uuid.UUID, req dto.AbrirOrdenRequest) (*dto.MesaDetalleResponse, error) {
	if _, err := s.Gate.Exigir(ctx, restauranteID); err != nil {
		return nil, err
	}
	mesa, err := s.Mesas.FindByNumero(ctx, restauranteID, numero)
	if err != nil {
		return nil, persistErr(err)
	}
	if err := domain.ValidarAperturaOrden(mesa.Estado); err != nil {
		return nil, err
	}
	items, err := resolverItems(ctx, s.Catalogo, restauranteID, req.Items)
	if err != nil {
		return nil, err
	}

	orden := &model.Orden{
		ID:            uuid.New(),
		RestauranteID: restauranteID,
		NumeroMesa:    numero,
		MeseroID:      &meseroID,
		Estado:        domain.OrdenAbierta,
		CreatedAt:     time.Now(),
	}
	if err := domain.AgregarItems(orden, items); err != nil {
		return nil, err
	}

	err = runTx(ctx, s.Mesas.DB(), func(tx *gorm.DB) error {
		ok, err := s.Mesas.OcuparTx(tx, mesa.ID, orden.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la mesa %d ya no esta libre", domain.ErrEstadoMesaInvalido, numero)
		}
		if err := s.Ordenes.CreateTx(tx, orden); err != nil {
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: la mesa %d ya tiene una orden abierta", domain.ErrEstadoMesaInvalido, numero)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, persistErr(err)
	}

	mesa.Estado = domain.MesaOcupada
	mesa.OrdenActivaID = &orden.ID

	log.Info().
		Str("restaurante_id", restauranteID.String()).
		Int("mesa", numero).
		Str("orden_id", orden.ID.String()).
		Msg("mesa ocupada")
	publish(ctx, s.Events, Evento{
		Tipo: EventoMesaOcupada, RestauranteID: restauranteID,
		NumeroMesa: numero, Estado: domain.MesaOcupada, OrdenID: &orden.ID,
	})

	o := ordenToResponse(orden)
	return &dto.MesaDetalleResponse{Mesa: mesaToResponse(mesa), Orden: &o}, nil
}

// ── Cobrar ────────────────────────────────────────────────────────────────────
// One transaction: free the table (conditional on it still holding this
// order), close the order, lock the open session and append the transaction.

func (s *mesaService) Cobrar(ctx context.Context, restauranteID uuid.UUID, numero int, usuarioID uuid.UUID, req dto.CobrarMesaRequest) (*dto.CobroResponse, error) {
	if !domain.MetodoPagoValido(req.MetodoPago) {
		return nil, domain.ErrMetodoPagoInvalido
	}
	sesion, err := s.Gate.Exigir(ctx, restauranteID)
	if err != nil {
		return nil, err
	}
	mesa, err := s.Mesas.FindByNumero(ctx, restauranteID, numero)
	if err != nil {
		return nil, persistErr(err)
	}
	if err := domain.ValidarCobro(mesa.Estado); err != nil {
		return nil, err
	}
	if mesa.OrdenActivaID == nil {
		return nil, fmt.Errorf("%w: mesa %d sin orden activa", domain.ErrEstadoMesaInvalido, numero)
	}
	ordenID := *mesa.OrdenActivaID

	actual, err := s.Ordenes.FindByID(ctx, ordenID)
	if err != nil {
		return nil, persistErr(err)
	}
	if len(actual.Items) == 0 && !s.PermitirCobroSinItems {
		return nil, domain.ErrOrdenVacia
	}

	var (
		orden *model.Orden
		trans *model.Transaccion
	)
	err = runTx(ctx, s.Mesas.DB(), func(tx *gorm.DB) error {
		ok, err := s.Mesas.LiberarTx(tx, mesa.ID, ordenID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la mesa %d ya fue cobrada o cambio de orden", domain.ErrEstadoMesaInvalido, numero)
		}

		locked, err := s.Ordenes.FindForUpdateTx(tx, ordenID)
		if err != nil {
			return err
		}
		if len(locked.Items) == 0 && !s.PermitirCobroSinItems {
			return domain.ErrOrdenVacia
		}
		now := time.Now()
		if err := domain.CerrarOrden(locked, now); err != nil {
			return domain.ErrOrdenCerrada
		}
		ok, err = s.Ordenes.CerrarTx(tx, ordenID, locked.Total, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOrdenCerrada
		}

		caja, err := s.Caja.FindSesionForUpdateTx(tx, sesion.ID)
		if err != nil {
			return err
		}
		if caja.Estado != domain.SesionAbierta {
			return domain.ErrCajaCerrada
		}
		t := &model.Transaccion{
			SesionCajaID: caja.ID,
			OrdenID:      &ordenID,
			TipoOrden:    domain.TipoOrdenMesa,
			MetodoPago:   req.MetodoPago,
			Total:        locked.Total,
			UsuarioID:    &usuarioID,
			ProcessedAt:  now,
		}
		if err := s.Caja.CreateTransaccionTx(tx, t); err != nil {
			return err
		}
		orden, trans = locked, t
		return nil
	})
	if err != nil {
		return nil, persistErr(err)
	}

	mesa.Estado = domain.MesaLibre
	mesa.OrdenActivaID = nil

	log.Info().
		Str("restaurante_id", restauranteID.String()).
		Int("mesa", numero).
		Str("orden_id", ordenID.String()).
		Str("sesion_id", sesion.ID.String()).
		Str("metodo_pago", req.MetodoPago).
		Int64("total", trans.Total).
		Msg("mesa cobrada")
	publish(ctx, s.Events, Evento{
		Tipo: EventoMesaLiberada, RestauranteID: restauranteID, NumeroMesa: numero,
		Estado: domain.MesaLibre, OrdenID: &ordenID, SesionID: &sesion.ID, Total: &trans.Total,
	})

	return &dto.CobroResponse{
		Mesa:        mesaToResponse(mesa),
		Orden:       ordenToResponse(orden),
		Transaccion: transaccionToResponse(trans),
	}, nil
}

// ── CambiarEstado ─────────────────────────────────────────────────────────────
// Manual transitions. A lost race re-reads the table so the caller gets the
// error that matches what actually happened (e.g. ErrMesaOcupada when a
// waiter opened an order in between).

const maxIntentosCambioEstado = 3

func (s *mesaService) CambiarEstado(ctx context.Context, restauranteID uuid.UUID, numero int, req dto.CambiarEstadoMesaRequest) (*dto.MesaResponse, error) {
	for intento := 0; intento < maxIntentosCambioEstado; intento++ {
		mesa, err := s.Mesas.FindByNumero(ctx, restauranteID, numero)
		if err != nil {
			return nil, persistErr(err)
		}
		if err := domain.ValidarTransicionManual(mesa.Estado, req.Estado); err != nil {
			return nil, err
		}
		ok, err := s.Mesas.CambiarEstado(ctx, mesa.ID, mesa.Estado, req.Estado, req.Notas)
		if err != nil {
			return nil, persistErr(err)
		}
		if !ok {
			continue
		}

		desde := mesa.Estado
		mesa.Estado = req.Estado
		mesa.Notas = req.Notas
		log.Info().
			Str("restaurante_id", restauranteID.String()).
			Int("mesa", numero).
			Str("desde", desde).
			Str("hacia", req.Estado).
			Msg("estado de mesa cambiado")
		publish(ctx, s.Events, Evento{Tipo: EventoMesaEstado, RestauranteID: restauranteID, NumeroMesa: numero, Estado: req.Estado})

		resp := mesaToResponse(mesa)
		return &resp, nil
	}
	return nil, fmt.Errorf("%w: la mesa %d cambio de estado durante la operacion", domain.ErrEstadoMesaInvalido, numero)
}
