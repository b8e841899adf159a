// Package messaging carries restaurant events over RabbitMQ: the API
// publishes them to a topic exchange and the notification subscriber reads
// them back from a durable queue.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kitchen-flow/internal/config"
	"kitchen-flow/internal/logger"
)

const (
	// EventsExchange receives every restaurant event, routed by event type.
	EventsExchange = "restaurant_events"
	// NotificationsQueue is consumed by the notification-subscriber command.
	NotificationsQueue = "kitchen_notifications"

	notificationTTL = 5 * time.Minute
	dialAttempts    = 5
	dialTimeout     = 3 * time.Second
)

var notificationBindings = []string{"order.#", "reservation.#", "comanda.#"}

type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// declareTopology is idempotent; both the API and the subscriber run it.
func declareTopology(ch topologyChannel) error {
	if err := ch.ExchangeDeclare(EventsExchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", EventsExchange, err)
	}

	args := amqp091.Table{"x-message-ttl": notificationTTL.Milliseconds()}
	if _, err := ch.QueueDeclare(NotificationsQueue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotificationsQueue, err)
	}

	for _, key := range notificationBindings {
		if err := ch.QueueBind(NotificationsQueue, key, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", NotificationsQueue, key, err)
		}
	}
	return nil
}

// Connection owns one AMQP connection and channel and can redial them.
type Connection struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
}

// New dials RabbitMQ, retrying with a linear backoff while the broker
// starts. ctx cancels the wait between attempts.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		logger: log,
		url:    cfg.RabbitMQURL(),
	}
	if err := c.dial(ctx, dialAttempts); err != nil {
		return nil, err
	}
	return c, nil
}

// dial takes the lock only around each attempt, never while waiting.
func (c *Connection) dial(ctx context.Context, attempts int) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.mu.Lock()
		err = c.open()
		c.mu.Unlock()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.Warn("rabbitmq_connection_retry", fmt.Sprintf("RabbitMQ not ready, retrying in %v", wait), "", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

// open replaces the connection and channel. Caller holds c.mu.
func (c *Connection) open() error {
	_ = c.close()

	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Dial: amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// IsClosed reports whether the connection or its channel is gone. The
// broker closes a channel on its own after a channel level error.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed()
}

// Reconnect drops the current connection and dials again with backoff.
func (c *Connection) Reconnect(ctx context.Context) error {
	return c.dial(ctx, dialAttempts)
}

// Redial makes a single attempt without waiting.
func (c *Connection) Redial() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open()
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil && !errors.Is(err, amqp091.ErrClosed) {
		return err
	}
	return nil
}
