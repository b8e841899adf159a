package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
)

// NotificationHandler processes one decoded restaurant notification.
type NotificationHandler func(ctx context.Context, msg *models.NotificationMessage) error

// ErrMalformed marks a delivery that can never be processed. It is dropped
// instead of being requeued.
var ErrMalformed = errors.New("malformed message")

const handleTimeout = 30 * time.Second

// Consumer reads notifications from a queue bound to the events exchange.
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// Consume delivers notifications to handler until ctx is cancelled. A closed
// delivery channel triggers one reconnect before consuming resumes.
func (c *Consumer) Consume(ctx context.Context, handler NotificationHandler) error {
	for {
		deliveries, err := c.subscribe(ctx)
		if err != nil {
			return err
		}

		c.logger.Info("consumer_started", fmt.Sprintf("Consuming notifications from %s", c.queueName), "", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

		if done := c.drain(ctx, deliveries, handler); done {
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		}

		c.logger.Warn("consumer_channel_closed", "Delivery channel closed, reconnecting", "", map[string]interface{}{
			"queue": c.queueName,
		})
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("reconnect after channel closed: %w", err)
		}
	}
}

func (c *Consumer) subscribe(ctx context.Context) (<-chan amqp091.Delivery, error) {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(ctx); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer on %s: %w", c.queueName, err)
	}
	return deliveries, nil
}

// drain reports true when ctx ended, false when the channel closed.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp091.Delivery, handler NotificationHandler) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-deliveries:
			if !ok {
				return false
			}
			c.handle(ctx, d, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp091.Delivery, handler NotificationHandler) {
	start := time.Now()
	fields := map[string]interface{}{
		"queue":        c.queueName,
		"routing_key":  d.RoutingKey,
		"delivery_tag": d.DeliveryTag,
	}

	msg, err := decodeNotification(d.Body)
	if err == nil {
		hctx, cancel := context.WithTimeout(ctx, handleTimeout)
		err = handler(hctx, msg)
		cancel()
	}
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		requeue := !errors.Is(err, ErrMalformed)
		fields["requeue"] = requeue
		c.logger.Error("message_processing_failed", "Failed to process notification", requestIDOf(msg), err, fields)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed", "Notification processed", msg.RequestID, fields)
	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", msg.RequestID, ackErr, nil)
	}
}

// decodeNotification rejects bodies that are not a notification with an
// event type.
func decodeNotification(body []byte) (*models.NotificationMessage, error) {
	var msg models.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformed)
	}
	return &msg, nil
}

func requestIDOf(msg *models.NotificationMessage) string {
	if msg == nil {
		return ""
	}
	return msg.RequestID
}

// Close cancels the consumer and closes its connection.
func (c *Consumer) Close() error {
	if c.conn == nil {
		return nil
	}
	if !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
	}
	return c.conn.Close()
}
