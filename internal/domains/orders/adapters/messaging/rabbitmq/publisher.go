package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	DefaultExchange = "orders_events"
	publishTimeout  = 5 * time.Second
)

var _ orderports.EventPublisher = (*Publisher)(nil)

// Message is the JSON body published for every order event.
type Message struct {
	Type       string                `json:"type"`
	OccurredAt time.Time             `json:"occurredAt"`
	Order      orderhttpmapper.Order `json:"order"`
}

// Publisher sends order events to a durable topic exchange, routed by event type.
type Publisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.conn = conn
	p.channel = ch
	return nil
}

// Publish sends one event. A dropped connection is redialled once.
func (p *Publisher) Publish(ctx context.Context, event orderports.OrderEvent) error {
	if event.Order == nil {
		return errors.New("order event has no order")
	}
	publishing, err := NewPublishing(event, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, publishing); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	if p.logger != nil {
		p.logger.DebugContext(ctx, "order event published",
			slog.String("exchange", p.exchange),
			slog.String("routing_key", string(event.Type)),
			slog.String("order.id", event.Order.ID),
		)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewPublishing builds the persistent JSON message for an event.
func NewPublishing(event orderports.OrderEvent, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Message{
		Type:       string(event.Type),
		OccurredAt: at,
		Order:      orderhttpmapper.FromDomainOrder(event.Order),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal order event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
		Type:         string(event.Type),
		MessageId:    event.Order.ID + ":" + string(event.Type),
		Body:         body,
	}, nil
}
