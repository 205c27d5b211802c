package service

import (
	"context"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, restauranteID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	RegistrarTransaccion(ctx context.Context, restauranteID, sesionID, usuarioID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error)
	RegistrarGasto(ctx context.Context, restauranteID, sesionID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error)
	Cerrar(ctx context.Context, restauranteID, sesionID, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error)
	Detalle(ctx context.Context, restauranteID, sesionID uuid.UUID) (*dto.DetalleCajaResponse, error)
	Activa(ctx context.Context, restauranteID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, restauranteID uuid.UUID, page, limit int) (*dto.HistorialCajaResponse, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	dispatcher *worker.Dispatcher
	events     EventPublisher
}

// NewCajaService wires the ledger. dispatcher and events may be nil.
func NewCajaService(repo repository.CajaRepository, dispatcher *worker.Dispatcher, events EventPublisher) CajaService {
	return &cajaService{repo: repo, dispatcher: dispatcher, events: events}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The pre-check gives a clean error in the common case; the partial unique
// index idx_sesiones_caja_una_abierta settles concurrent opens.

func (s *cajaService) Abrir(ctx context.Context, restauranteID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if !domain.MontoValido(req.MontoInicial) {
		return nil, domain.ErrMontoInvalido
	}
	if _, err := s.repo.FindSesionAbierta(ctx, restauranteID); err == nil {
		return nil, domain.ErrSesionYaAbierta
	} else if !repository.IsNotFound(err) {
		return nil, persistErr(err)
	}

	sesion := &model.SesionCaja{
		RestauranteID: restauranteID,
		AbiertaPor:    usuarioID,
		MontoInicial:  req.MontoInicial,
		Estado:        domain.SesionAbierta,
		NotasApertura: req.Notas,
		OpenedAt:      time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrSesionYaAbierta
		}
		return nil, persistErr(err)
	}

	log.Info().
		Str("restaurante_id", restauranteID.String()).
		Str("sesion_id", sesion.ID.String()).
		Int64("monto_inicial", sesion.MontoInicial).
		Msg("caja abierta")
	publish(ctx, s.events, Evento{Tipo: EventoCajaAbierta, RestauranteID: restauranteID, SesionID: &sesion.ID})

	resp := sesionToResponse(sesion)
	return &resp, nil
}

// lockAbierta locks the session row and checks tenant and state.
func (s *cajaService) lockAbierta(tx *gorm.DB, restauranteID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionForUpdateTx(tx, sesionID)
	if err != nil {
		return nil, err
	}
	if sesion.RestauranteID != restauranteID {
		return nil, domain.ErrNoEncontrado
	}
	if sesion.Estado != domain.SesionAbierta {
		return nil, domain.ErrSesionNoAbierta
	}
	return sesion, nil
}

// ── RegistrarTransaccion ─────────────────────────────────────────────────────
// Ledger rows are append-only: there is no update or delete path.

func (s *cajaService) RegistrarTransaccion(ctx context.Context, restauranteID, sesionID, usuarioID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error) {
	if !domain.TipoOrdenValido(req.TipoOrden) {
		return nil, domain.ErrTipoOrdenInvalido
	}
	if !domain.MetodoPagoValido(req.MetodoPago) {
		return nil, domain.ErrMetodoPagoInvalido
	}
	if !domain.MontoValido(req.Monto) {
		return nil, domain.ErrMontoInvalido
	}

	t := &model.Transaccion{
		SesionCajaID: sesionID,
		TipoOrden:    req.TipoOrden,
		MetodoPago:   req.MetodoPago,
		Total:        req.Monto,
		UsuarioID:    &usuarioID,
		ProcessedAt:  time.Now(),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockAbierta(tx, restauranteID, sesionID); err != nil {
			return err
		}
		return s.repo.CreateTransaccionTx(tx, t)
	})
	if err != nil {
		return nil, persistErr(err)
	}

	resp := transaccionToResponse(t)
	return &resp, nil
}

// ── RegistrarGasto ───────────────────────────────────────────────────────────
// A zero expense records nothing, so it is rejected like a negative one.

func (s *cajaService) RegistrarGasto(ctx context.Context, restauranteID, sesionID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	if req.Monto == 0 || !domain.MontoValido(req.Monto) {
		return nil, domain.ErrMontoInvalido
	}

	g := &model.Gasto{
		SesionCajaID: sesionID,
		Categoria:    req.Categoria,
		Monto:        req.Monto,
		Notas:        req.Notas,
		RegisteredAt: time.Now(),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockAbierta(tx, restauranteID, sesionID); err != nil {
			return err
		}
		return s.repo.CreateGastoTx(tx, g)
	})
	if err != nil {
		return nil, persistErr(err)
	}

	resp := gastoToResponse(g)
	return &resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// The session row stays locked from the read of the ledgers to the state
// change, so no transaction or expense can slip in between the aggregate and
// the close. The closing report is generated asynchronously.

func (s *cajaService) Cerrar(ctx context.Context, restauranteID, sesionID, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error) {
	if req.EfectivoContado != nil && !domain.MontoValido(*req.EfectivoContado) {
		return nil, domain.ErrMontoInvalido
	}

	var sesion *model.SesionCaja
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.lockAbierta(tx, restauranteID, sesionID)
		if err != nil {
			return err
		}
		trans, gastos, err := s.repo.ListMovimientosTx(tx, sesionID)
		if err != nil {
			return err
		}

		now := time.Now()
		locked.Estado = domain.SesionCerrada
		locked.ClosedAt = &now
		locked.CerradaPor = &usuarioID
		locked.NotasCierre = req.Notas
		cierre, err := domain.CalcularCierre(locked.MontoInicial, trans, gastos)
		if err != nil {
			return err
		}
		locked.Cierre = cierre
		if req.EfectivoContado != nil {
			contado := *req.EfectivoContado
			diff, _, clasif := domain.Reconciliar(locked.Cierre.EfectivoTeorico, contado)
			locked.EfectivoContado = &contado
			locked.Diferencia = &diff
			locked.ClasificacionDiferencia = &clasif
		}

		ok, err := s.repo.CerrarSesionTx(tx, locked)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSesionNoAbierta
		}
		sesion = locked
		return nil
	})
	if err != nil {
		return nil, persistErr(err)
	}

	logEvt := log.Info()
	if sesion.ClasificacionDiferencia != nil && *sesion.ClasificacionDiferencia == domain.DiferenciaCritico {
		logEvt = log.Warn()
	}
	logEvt.
		Str("restaurante_id", restauranteID.String()).
		Str("sesion_id", sesion.ID.String()).
		Int64("total_ventas", sesion.Cierre.TotalVentas).
		Int64("efectivo_teorico", sesion.Cierre.EfectivoTeorico).
		Msg("caja cerrada")

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueCierre(ctx, worker.CierreJobPayload{SesionID: sesion.ID, RestauranteID: restauranteID}); err != nil {
			log.Error().Err(err).Str("sesion_id", sesion.ID.String()).Msg("failed to enqueue cierre report")
		}
	}
	total := sesion.Cierre.TotalVentas
	publish(ctx, s.events, Evento{Tipo: EventoCajaCerrada, RestauranteID: restauranteID, SesionID: &sesion.ID, Total: &total})

	return &dto.CerrarCajaResponse{
		Sesion:     sesionToResponse(sesion),
		Cierre:     cierreToResponse(sesion.Cierre),
		Diferencia: diferenciaToResponse(sesion, sesion.Cierre.EfectivoTeorico),
	}, nil
}

// ── Detalle ───────────────────────────────────────────────────────────────────
// The aggregate is always recomputed from the rows, open or closed.

func (s *cajaService) Detalle(ctx context.Context, restauranteID, sesionID uuid.UUID) (*dto.DetalleCajaResponse, error) {
	sesion, err := s.findSesion(ctx, restauranteID, sesionID)
	if err != nil {
		return nil, err
	}
	trans, err := s.repo.ListTransacciones(ctx, sesionID)
	if err != nil {
		return nil, persistErr(err)
	}
	gastos, err := s.repo.ListGastos(ctx, sesionID)
	if err != nil {
		return nil, persistErr(err)
	}

	cierre, err := domain.CalcularCierre(sesion.MontoInicial, trans, gastos)
	if err != nil {
		return nil, err
	}
	resp := &dto.DetalleCajaResponse{
		Sesion:        sesionToResponse(sesion),
		Cierre:        cierreToResponse(cierre),
		Diferencia:    diferenciaToResponse(sesion, cierre.EfectivoTeorico),
		Transacciones: make([]dto.TransaccionResponse, len(trans)),
		Gastos:        make([]dto.GastoResponse, len(gastos)),
	}
	for i := range trans {
		resp.Transacciones[i] = transaccionToResponse(&trans[i])
	}
	for i := range gastos {
		resp.Gastos[i] = gastoToResponse(&gastos[i])
	}
	return resp, nil
}

func (s *cajaService) findSesion(ctx context.Context, restauranteID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, persistErr(err)
	}
	if sesion.RestauranteID != restauranteID {
		return nil, domain.ErrNoEncontrado
	}
	return sesion, nil
}

// ── Activa / Historial ───────────────────────────────────────────────────────

func (s *cajaService) Activa(ctx context.Context, restauranteID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbierta(ctx, restauranteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrCajaCerrada
		}
		return nil, persistErr(err)
	}
	resp := sesionToResponse(sesion)
	return &resp, nil
}

func (s *cajaService) Historial(ctx context.Context, restauranteID uuid.UUID, page, limit int) (*dto.HistorialCajaResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sesiones, total, err := s.repo.ListSesiones(ctx, restauranteID, page, limit)
	if err != nil {
		return nil, persistErr(err)
	}
	data := make([]dto.SesionCajaResponse, len(sesiones))
	for i := range sesiones {
		data[i] = sesionToResponse(&sesiones[i])
	}
	return &dto.HistorialCajaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}
