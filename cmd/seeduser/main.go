// cmd/seeduser/main.go creates or updates the administrator of a restaurant.
// Usage: SEED_RESTAURANTE_ID=<uuid> SEED_PASSWORD=<pwd> go run ./cmd/seeduser
// Without SEED_RESTAURANTE_ID a new restaurant id is generated and printed.
package main

import (
	"context"
	"os"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/config"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	restauranteID := uuid.New()
	if raw := os.Getenv("SEED_RESTAURANTE_ID"); raw != "" {
		if restauranteID, err = uuid.Parse(raw); err != nil {
			log.Fatal().Err(err).Msg("SEED_RESTAURANTE_ID is not a uuid")
		}
	}
	username := envOr("SEED_USERNAME", "admin")
	password := envOr("SEED_PASSWORD", "spoon1234")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	// NewDatabase also migrates, so a fresh database is usable right away
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (restaurante_id, username, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'administrador', true, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    restaurante_id = EXCLUDED.restaurante_id,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = NOW()
	`, restauranteID, username, "Administrador", string(hash))
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert")
	}

	log.Info().
		Str("username", username).
		Str("restaurante_id", restauranteID.String()).
		Msg("administrator created or updated")
}
