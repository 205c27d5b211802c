package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventPublisher is satisfied by infra.Broker. Publishing is best-effort:
// state lives in Postgres, events only spare devices from polling.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Routing keys on the events exchange.
const (
	EventoMesaOcupada  = "mesa.ocupada"
	EventoMesaLiberada = "mesa.liberada"
	EventoMesaEstado   = "mesa.estado"
	EventoOrdenItems   = "orden.items"
	EventoCajaAbierta  = "caja.abierta"
	EventoCajaCerrada  = "caja.cerrada"
)

// Evento is the body of every published message.
type Evento struct {
	Tipo          string     `json:"tipo"`
	RestauranteID uuid.UUID  `json:"restaurante_id"`
	NumeroMesa    int        `json:"numero_mesa,omitempty"`
	Estado        string     `json:"estado,omitempty"`
	OrdenID       *uuid.UUID `json:"orden_id,omitempty"`
	SesionID      *uuid.UUID `json:"sesion_id,omitempty"`
	Total         *int64     `json:"total,omitempty"`
	OcurridoEn    time.Time  `json:"ocurrido_en"`
}

// publish sends an event after a committed state change. Failures are logged.
func publish(ctx context.Context, pub EventPublisher, ev Evento) {
	if pub == nil {
		return
	}
	ev.OcurridoEn = time.Now().UTC()
	if err := pub.Publish(ctx, ev.Tipo, ev); err != nil {
		log.Warn().Err(err).Str("evento", ev.Tipo).Str("restaurante_id", ev.RestauranteID.String()).
			Msg("event publish failed")
	}
}
