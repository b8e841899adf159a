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
	"kitchen-flow/internal/restaurant"
)

const (
	publishTimeout = 5 * time.Second
	// DefaultPublishBuffer is how many events may wait for the broker.
	DefaultPublishBuffer = 256
)

// ErrPublishQueueFull is returned by Record when the broker has fallen so far
// behind that the event is dropped.
var ErrPublishQueueFull = errors.New("publish queue full")

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher is a restaurant.EventSink that forwards every event to the
// events exchange, routed by event type. Record only queues the event; Run
// talks to the broker, so a slow or absent broker never holds up a request.
type Publisher struct {
	channel func() (amqpPublisher, error)
	logger  *logger.Logger
	queue   chan *models.NotificationMessage
}

func NewPublisher(conn *Connection, log *logger.Logger, buffer int) *Publisher {
	return newPublisher(func() (amqpPublisher, error) {
		if conn.IsClosed() {
			if err := conn.Redial(); err != nil {
				return nil, fmt.Errorf("failed to reconnect: %w", err)
			}
		}
		return conn.Channel(), nil
	}, log, buffer)
}

func newPublisher(channel func() (amqpPublisher, error), log *logger.Logger, buffer int) *Publisher {
	if buffer < 1 {
		buffer = DefaultPublishBuffer
	}
	return &Publisher{
		channel: channel,
		logger:  log,
		queue:   make(chan *models.NotificationMessage, buffer),
	}
}

// Record queues ev for publishing and never blocks.
func (p *Publisher) Record(ctx context.Context, ev restaurant.Event) error {
	msg := models.NewNotificationMessage(ev, logger.RequestIDFromContext(ctx))
	select {
	case p.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s for %s", ErrPublishQueueFull, msg.EventType, msg.EntityID)
	}
}

// Run publishes queued events until ctx is cancelled, then flushes what is
// still queued. A failed publish is logged and the event dropped.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case msg := <-p.queue:
			_ = p.publish(ctx, msg)
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case msg := <-p.queue:
			_ = p.publish(context.Background(), msg)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, msg *models.NotificationMessage) error {
	fields := map[string]interface{}{
		"exchange":    EventsExchange,
		"routing_key": msg.RoutingKey(),
		"entity_id":   msg.EntityID,
	}

	publishing, err := newPublishing(msg)
	if err == nil {
		var ch amqpPublisher
		if ch, err = p.channel(); err == nil {
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			err = ch.PublishWithContext(pctx, EventsExchange, msg.RoutingKey(), false, false, publishing)
			cancel()
		}
	}
	if err != nil {
		p.logger.Error("message_publish_failed", "Failed to publish restaurant event", msg.RequestID, err, fields)
		return fmt.Errorf("failed to publish %s: %w", msg.EventType, err)
	}

	p.logger.Debug("message_published", "Published restaurant event", msg.RequestID, fields)
	return nil
}

func newPublishing(msg *models.NotificationMessage) (amqp091.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     msg.Timestamp,
		Type:          msg.EventType,
		CorrelationId: msg.RequestID,
		Body:          body,
	}, nil
}
