package repository

import (
	"context"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdenRepository interface {
	CreateTx(tx *gorm.DB, o *model.Orden) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error)
	// FindForUpdateTx locks the order row for the rest of the transaction and
	// loads its items.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Orden, error)
	CreateItemsTx(tx *gorm.DB, items []model.ItemOrden) error
	// RecalcularTotalTx rewrites ordenes.total from its items and returns it.
	RecalcularTotalTx(tx *gorm.DB, ordenID uuid.UUID) (int64, error)
	// CerrarTx moves abierta -> cerrada; false when it was already closed.
	CerrarTx(tx *gorm.DB, ordenID uuid.UUID, total int64, closedAt time.Time) (bool, error)
	DB() *gorm.DB
}

type ordenRepo struct{ db *gorm.DB }

func NewOrdenRepository(db *gorm.DB) OrdenRepository { return &ordenRepo{db: db} }

func (r *ordenRepo) DB() *gorm.DB { return r.db }

func (r *ordenRepo) CreateTx(tx *gorm.DB, o *model.Orden) error {
	return tx.Create(o).Error
}

func (r *ordenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *ordenRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error
	if err != nil {
		return &o, err
	}
	err = tx.Where("orden_id = ?", id).Order("created_at ASC").Find(&o.Items).Error
	return &o, err
}

func (r *ordenRepo) CreateItemsTx(tx *gorm.DB, items []model.ItemOrden) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *ordenRepo) RecalcularTotalTx(tx *gorm.DB, ordenID uuid.UUID) (int64, error) {
	var total int64
	err := tx.Raw(`
		UPDATE ordenes
		SET total = (SELECT COALESCE(SUM(precio_total), 0) FROM items_orden WHERE orden_id = ?)
		WHERE id = ?
		RETURNING total`, ordenID, ordenID).Scan(&total).Error
	return total, err
}

func (r *ordenRepo) CerrarTx(tx *gorm.DB, ordenID uuid.UUID, total int64, closedAt time.Time) (bool, error) {
	res := tx.Model(&model.Orden{}).
		Where("id = ? AND estado = 'abierta'", ordenID).
		Updates(map[string]interface{}{
			"estado":    "cerrada",
			"total":     total,
			"closed_at": closedAt,
		})
	return res.RowsAffected == 1, res.Error
}
