package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

const (
	EventsExchange        = "brewbean.events"
	OrderPlacedRoutingKey = "order.placed.v1"

	publishTimeout = 3 * time.Second
)

// Publisher announces placed orders to whoever listens.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o coffee.Order) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, coffee.Order) error { return nil }

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	ch     Channel
	logger *slog.Logger
	seq    atomic.Int64
	now    func() time.Time
}

// Dial connects to the broker and opens a publisher on a fresh channel. The
// returned connection is owned by the caller.
func Dial(url string, logger *slog.Logger) (*amqp.Connection, *RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewRabbitPublisher(ch, logger)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, p, nil
}

func NewRabbitPublisher(ch Channel, logger *slog.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}
	return &RabbitPublisher{ch: ch, logger: logger, now: time.Now}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, o coffee.Order) error {
	env := BuildOrderPlacedEnvelope(o, EnvelopeMetadata{
		CorrelationID: middleware.GetCorrelationID(ctx),
		Sequence:      p.seq.Add(1),
	}, p.now())

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderPlacedEventName, err)
	}
	if err := p.publishJSON(ctx, OrderPlacedRoutingKey, env.EventID, env.CorrelationID, body); err != nil {
		return fmt.Errorf("publish %s: %w", OrderPlacedEventName, err)
	}
	p.logger.Debug("published event", "event", OrderPlacedEventName, "order_id", o.ID, "event_id", env.EventID)
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     p.now().UTC(),
			Body:          body,
		},
	)
}
