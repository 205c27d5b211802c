package repository

import (
	"context"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MesaRepository is the data access contract for tables. State-changing
// methods are conditional writes (compare-and-swap on the current estado):
// the boolean result is false when another device won the race.
type MesaRepository interface {
	Create(ctx context.Context, m *model.Mesa) error
	CreateBatch(ctx context.Context, mesas []model.Mesa) error
	List(ctx context.Context, restauranteID uuid.UUID) ([]model.Mesa, error)
	FindByNumero(ctx context.Context, restauranteID uuid.UUID, numero int) (*model.Mesa, error)
	MaxNumero(ctx context.Context, restauranteID uuid.UUID) (int, error)

	// OcuparTx moves libre -> ocupada and sets orden_activa_id.
	OcuparTx(tx *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error)
	// LiberarTx moves ocupada -> libre, only if ordenID is still the active order.
	LiberarTx(tx *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error)
	// CambiarEstado applies a manual transition from the observed state.
	CambiarEstado(ctx context.Context, mesaID uuid.UUID, desde, hacia string, notas *string) (bool, error)

	DB() *gorm.DB
}

type mesaRepo struct{ db *gorm.DB }

func NewMesaRepository(db *gorm.DB) MesaRepository { return &mesaRepo{db: db} }

func (r *mesaRepo) DB() *gorm.DB { return r.db }

func (r *mesaRepo) Create(ctx context.Context, m *model.Mesa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mesaRepo) CreateBatch(ctx context.Context, mesas []model.Mesa) error {
	if len(mesas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(mesas, 100).Error
}

func (r *mesaRepo) List(ctx context.Context, restauranteID uuid.UUID) ([]model.Mesa, error) {
	var mesas []model.Mesa
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ?", restauranteID).
		Order("numero ASC").
		Find(&mesas).Error
	return mesas, err
}

func (r *mesaRepo) FindByNumero(ctx context.Context, restauranteID uuid.UUID, numero int) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ? AND numero = ?", restauranteID, numero).
		First(&m).Error
	return &m, err
}

func (r *mesaRepo) MaxNumero(ctx context.Context, restauranteID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Mesa{}).
		Where("restaurante_id = ?", restauranteID).
		Select("COALESCE(MAX(numero), 0)").
		Scan(&max).Error
	return max, err
}

func (r *mesaRepo) OcuparTx(tx *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error) {
	res := tx.Model(&model.Mesa{}).
		Where("id = ? AND estado = 'libre' AND orden_activa_id IS NULL", mesaID).
		Updates(map[string]interface{}{
			"estado":          "ocupada",
			"orden_activa_id": ordenID,
			"updated_at":      gorm.Expr("NOW()"),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *mesaRepo) LiberarTx(tx *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error) {
	res := tx.Model(&model.Mesa{}).
		Where("id = ? AND estado = 'ocupada' AND orden_activa_id = ?", mesaID, ordenID).
		Updates(map[string]interface{}{
			"estado":          "libre",
			"orden_activa_id": nil,
			"updated_at":      gorm.Expr("NOW()"),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *mesaRepo) CambiarEstado(ctx context.Context, mesaID uuid.UUID, desde, hacia string, notas *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Mesa{}).
		Where("id = ? AND estado = ?", mesaID, desde).
		Updates(map[string]interface{}{
			"estado":     hacia,
			"notas":      notas,
			"updated_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected == 1, res.Error
}
