// Package rabbitmq publishes order events to a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/marketly/storefront/internal/core/domain"
)

// Publisher owns one connection and channel. Publish is safe for concurrent
// use.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex
}

// Dial connects to uri and declares queue as durable.
func Dial(uri, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", queue, err)
	}
	return &Publisher{conn: conn, ch: ch, queue: q.Name}, nil
}

// Publish sends e as a persistent JSON message on the default exchange.
func (p *Publisher) Publish(ctx context.Context, e domain.OrderEvent) error {
	msg, err := message(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func message(e domain.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq encode: %w", err)
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(e.Type),
		MessageId:    e.OrderID + ":" + string(e.Type) + ":" + string(e.Status),
		Timestamp:    ts,
		Body:         body,
	}, nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("rabbitmq close channel: %w", err)
	}
	return p.conn.Close()
}

// Healthy reports whether the connection is still open.
func (p *Publisher) Healthy() bool { return !p.conn.IsClosed() }
