package infra

import (
	"fmt"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, check constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema and applies the patches. Safe to run on every boot.
func Migrate(db *gorm.DB) error {
	// gen_random_uuid() is built in from PostgreSQL 13; older servers need pgcrypto.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Mesa{},
		&model.Orden{},
		&model.ItemOrden{},
		&model.SesionCaja{},
		&model.Transaccion{},
		&model.Gasto{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds the constraints the concurrency guarantees rest on.
// Conditional updates in the repositories catch lost races on a single row;
// these indexes catch the ones that would insert a second row.
//
// Every statement is idempotent.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"one open caja per restaurant", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_sesiones_caja_una_abierta
  ON sesiones_caja (restaurante_id) WHERE estado = 'abierta'`},

		{"one open order per table", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_ordenes_una_abierta_por_mesa
  ON ordenes (restaurante_id, numero_mesa) WHERE estado = 'abierta'`},

		{"active order only on occupied tables", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_mesas_orden_activa') THEN
    ALTER TABLE mesas ADD CONSTRAINT chk_mesas_orden_activa
      CHECK (orden_activa_id IS NULL OR estado = 'ocupada');
  END IF;
END $$`},

		{"known table states", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_mesas_estado') THEN
    ALTER TABLE mesas ADD CONSTRAINT chk_mesas_estado
      CHECK (estado IN ('libre', 'ocupada', 'reservada', 'mantenimiento', 'inactiva'));
  END IF;
END $$`},

		{"non-negative amounts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_items_orden_montos') THEN
    ALTER TABLE items_orden ADD CONSTRAINT chk_items_orden_montos
      CHECK (cantidad >= 1 AND precio_unitario >= 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_items_orden_precio_total') THEN
    ALTER TABLE items_orden ADD CONSTRAINT chk_items_orden_precio_total
      CHECK (precio_total >= 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ordenes_total') THEN
    ALTER TABLE ordenes ADD CONSTRAINT chk_ordenes_total
      CHECK (total >= 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_transacciones_caja_total') THEN
    ALTER TABLE transacciones_caja ADD CONSTRAINT chk_transacciones_caja_total
      CHECK (total >= 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sesiones_caja_monto_inicial') THEN
    ALTER TABLE sesiones_caja ADD CONSTRAINT chk_sesiones_caja_monto_inicial
      CHECK (monto_inicial >= 0);
  END IF;
END $$`},

		{"history listing index",
			`CREATE INDEX IF NOT EXISTS idx_sesiones_caja_opened ON sesiones_caja (restaurante_id, opened_at DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
