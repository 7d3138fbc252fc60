package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// eventMessage is the JSON body of a published event.
type eventMessage struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Actor      string            `json:"actor"`
	EntityID   uint64            `json:"entity_id,string"`
	Attributes map[string]string `json:"attributes"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// RabbitPublisher publishes events to a topic exchange with routing key
// "ledger.<event type>".
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	logger   *zap.Logger
}

// DialRabbitPublisher connects to the broker and declares the exchange.
func DialRabbitPublisher(url, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	p, err := newRabbitPublisher(ch, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish sends the event as a persistent JSON message. Failures are logged.
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.Event) {
	body, err := json.Marshal(eventMessage{
		ID:         event.ID.String(),
		Type:       string(event.Type),
		Actor:      event.Actor.Hex(),
		EntityID:   event.EntityID,
		Attributes: event.Attributes,
		OccurredAt: event.OccurredAt.UTC(),
	})
	if err != nil {
		p.logger.Error("failed to encode event", zap.String("event_id", event.ID.String()), zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(pubCtx, p.exchange, RoutingKey(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// RoutingKey returns the routing key used for an event type.
func RoutingKey(eventType domain.EventType) string {
	return "ledger." + strings.ToLower(string(eventType))
}

// Close closes the channel and the connection.
func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
