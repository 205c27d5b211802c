package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// EventsExchange is the topic exchange every lifecycle event goes to.
// Routing keys: mesa.ocupada, mesa.liberada, mesa.estado, orden.items,
// caja.abierta, caja.cerrada. Devices bind their own queues to it.
const EventsExchange = "spoon.eventos"

var errBrokerClosed = errors.New("broker: connection closed")

// Broker publishes JSON events to RabbitMQ. Publishing goes through a circuit
// breaker; callers treat a failed publish as a logged warning, never as a
// failed operation.
type Broker struct {
	url string
	cb  *CircuitBreaker

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewBroker dials RabbitMQ and declares the events exchange.
func NewBroker(url string) (*Broker, error) {
	b := &Broker{url: url, cb: NewCircuitBreaker(DefaultCBConfig())}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// must be called under lock (or before the broker is shared)
func (b *Broker) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("broker: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("broker: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("broker: declare exchange: %w", err)
	}
	b.conn, b.ch = conn, ch
	return nil
}

// Publish sends payload as a persistent JSON message under routingKey.
func (b *Broker) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal: %w", err)
	}
	return b.cb.Execute(func() error {
		ch, err := b.channel()
		if err != nil {
			return err
		}
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return ch.PublishWithContext(pubCtx, EventsExchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	})
}

// channel returns the live channel, reconnecting once if the connection dropped.
func (b *Broker) channel() (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil && !b.conn.IsClosed() && b.ch != nil && !b.ch.IsClosed() {
		return b.ch, nil
	}
	log.Warn().Msg("broker: connection lost, reconnecting")
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b.ch, nil
}

// Healthy reports whether the connection is up and the breaker is not open.
func (b *Broker) Healthy() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	up := b.conn != nil && !b.conn.IsClosed()
	b.mu.Unlock()
	return up && b.cb.State() != CBOpen
}

// State exposes the breaker state for the health endpoint.
func (b *Broker) State() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return errBrokerClosed
	}
	if b.ch != nil {
		_ = b.ch.Close()
	}
	return b.conn.Close()
}
