package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	EventCreated = "event.created"
	EventUpdated = "event.updated"
	EventDeleted = "event.deleted"
)

// EventChange is the message published after a committed mutation. Event is
// nil for deletions.
type EventChange struct {
	Type       string             `json:"type"`
	EventID    uuid.UUID          `json:"event_id"`
	OccurredAt time.Time          `json:"occurred_at"`
	Event      *model.EventDetail `json:"event,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, change EventChange) error
	Close()
}

// Nop discards every change. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, EventChange) error { return nil }
func (Nop) Close()                                     {}

// Rabbit publishes changes to a durable topic exchange, routed by change
// type.
type Rabbit struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
	log      zerolog.Logger
}

func NewRabbit(url, exchange string, logger zerolog.Logger) (*Rabbit, error) {
	logger = logger.With().Str("component", "broker").Logger()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	logger.Info().Str("exchange", exchange).Msg("rabbitmq publisher ready")
	return &Rabbit{conn: conn, channel: ch, exchange: exchange, log: logger}, nil
}

// Publish sends the change as JSON. amqp channels are not safe for
// concurrent publishing, so calls are serialised.
func (r *Rabbit) Publish(ctx context.Context, change EventChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(ctx,
		r.exchange,
		change.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    change.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", change.Type, err)
	}
	r.log.Debug().Str("type", change.Type).Str("event_id", change.EventID.String()).Msg("change published")
	return nil
}

func (r *Rabbit) Close() {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.log.Info().Msg("rabbitmq connection closed")
}
