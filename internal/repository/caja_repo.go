package repository

import (
	"context"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CajaRepository persists cash sessions and their append-only ledger.
// Transactions and expenses have no Update/Delete on purpose.
type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionAbierta(ctx context.Context, restauranteID uuid.UUID) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionForUpdateTx locks the session row; ledger writes and close
	// both take this lock so they serialize per session.
	FindSesionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	// CerrarSesionTx persists the close; false when the session was no longer open.
	CerrarSesionTx(tx *gorm.DB, s *model.SesionCaja) (bool, error)
	ListSesiones(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error)

	CreateTransaccionTx(tx *gorm.DB, t *model.Transaccion) error
	CreateGastoTx(tx *gorm.DB, g *model.Gasto) error
	ListTransacciones(ctx context.Context, sesionID uuid.UUID) ([]model.Transaccion, error)
	ListGastos(ctx context.Context, sesionID uuid.UUID) ([]model.Gasto, error)
	// ListMovimientosTx reads both ledgers of a session inside the closing transaction.
	ListMovimientosTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.Transaccion, []model.Gasto, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, restauranteID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ? AND estado = 'abierta'", restauranteID).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) CerrarSesionTx(tx *gorm.DB, s *model.SesionCaja) (bool, error) {
	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = 'abierta'", s.ID).
		Select("estado", "closed_at", "cerrada_por", "notas_cierre",
			"cierre_total_ventas", "cierre_total_efectivo", "cierre_total_tarjeta",
			"cierre_total_digital", "cierre_total_gastos", "cierre_efectivo_teorico",
			"efectivo_contado", "diferencia", "clasificacion_diferencia").
		Updates(s)
	return res.RowsAffected == 1, res.Error
}

func (r *cajaRepo) ListSesiones(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Where("restaurante_id = ?", restauranteID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateTransaccionTx(tx *gorm.DB, t *model.Transaccion) error {
	return tx.Create(t).Error
}

func (r *cajaRepo) CreateGastoTx(tx *gorm.DB, g *model.Gasto) error {
	return tx.Create(g).Error
}

func (r *cajaRepo) ListTransacciones(ctx context.Context, sesionID uuid.UUID) ([]model.Transaccion, error) {
	var trans []model.Transaccion
	err := r.db.WithContext(ctx).Where("sesion_caja_id = ?", sesionID).Order("processed_at ASC").Find(&trans).Error
	return trans, err
}

func (r *cajaRepo) ListGastos(ctx context.Context, sesionID uuid.UUID) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := r.db.WithContext(ctx).Where("sesion_caja_id = ?", sesionID).Order("registered_at ASC").Find(&gastos).Error
	return gastos, err
}

func (r *cajaRepo) ListMovimientosTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.Transaccion, []model.Gasto, error) {
	var trans []model.Transaccion
	if err := tx.Where("sesion_caja_id = ?", sesionID).Order("processed_at ASC").Find(&trans).Error; err != nil {
		return nil, nil, err
	}
	var gastos []model.Gasto
	if err := tx.Where("sesion_caja_id = ?", sesionID).Order("registered_at ASC").Find(&gastos).Error; err != nil {
		return nil, nil, err
	}
	return trans, gastos, nil
}
