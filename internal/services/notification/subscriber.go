package notification

import (
	"context"
	"fmt"
	"io"
	"os"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/messaging"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

// Consumer is the part of messaging.Consumer the subscriber needs.
type Consumer interface {
	Consume(ctx context.Context, handler messaging.NotificationHandler) error
	Close() error
}

// Subscriber prints restaurant notifications for the floor staff.
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

func NewSubscriber(consumer Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      os.Stdout,
	}
}

// Start consumes until ctx is cancelled or the consumer gives up.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.consumer.Consume(ctx, s.handleNotification)
	}()

	select {
	case <-ctx.Done():
		s.stop(requestID)
		return nil
	case err := <-done:
		if ctx.Err() != nil {
			s.stop(requestID)
			return nil
		}
		if err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		return err
	}
}

func (s *Subscriber) stop(requestID string) {
	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if err := s.consumer.Close(); err != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, err, nil)
	}
}

func (s *Subscriber) handleNotification(ctx context.Context, msg *models.NotificationMessage) error {
	s.logger.Debug("notification_received", "Received notification", msg.RequestID, map[string]interface{}{
		"event_type": msg.EventType,
		"entity_id":  msg.EntityID,
	})

	if _, err := fmt.Fprintln(s.out, FormatNotification(msg)); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", msg.RequestID, map[string]interface{}{
		"event_type": msg.EventType,
		"entity_id":  msg.EntityID,
		"table_id":   msg.TableID,
		"status":     msg.Status,
		"timestamp":  msg.Timestamp.Format("2006-01-02 15:04:05"),
	})
	return nil
}

// FormatNotification renders a message as one human readable line.
func FormatNotification(msg *models.NotificationMessage) string {
	ts := msg.Timestamp.Format("2006-01-02 15:04:05")

	switch restaurant.EventType(msg.EventType) {
	case restaurant.EventOrderOpened:
		return fmt.Sprintf("[%s] Mesa %s: nueva comanda %s", ts, msg.TableID, msg.EntityID)
	case restaurant.EventKitchenStatusChanged:
		if msg.Status == string(restaurant.KitchenPreparing) {
			return fmt.Sprintf("[%s] Mesa %s: comanda en preparación", ts, msg.TableID)
		}
		return fmt.Sprintf("[%s] Mesa %s: cocina marcó la comanda como %s", ts, msg.TableID, msg.Status)
	case restaurant.EventOrderDispatched:
		return fmt.Sprintf("[%s] Mesa %s: comanda lista y despachada", ts, msg.TableID)
	case restaurant.EventOrderResumed:
		return fmt.Sprintf("[%s] Mesa %s: comanda retomada, volvió a preparación", ts, msg.TableID)
	case restaurant.EventReservationCreated:
		return fmt.Sprintf("[%s] Nueva reserva %s", ts, msg.EntityID)
	case restaurant.EventReservationCancelled:
		return fmt.Sprintf("[%s] Reserva %s cancelada", ts, msg.EntityID)
	case restaurant.EventTableAssigned:
		return fmt.Sprintf("[%s] Reserva %s confirmada (%s)", ts, msg.EntityID, msg.Detail)
	case restaurant.EventComandaCreated:
		return fmt.Sprintf("[%s] Mesa %s: comanda #%s registrada (total %s)", ts, msg.TableID, msg.EntityID, msg.Detail)
	case restaurant.EventComandaStatusChanged:
		return fmt.Sprintf("[%s] Comanda #%s: %s", ts, msg.EntityID, msg.Status)
	default:
		return fmt.Sprintf("[%s] %s %s %s", ts, msg.EventType, msg.EntityID, msg.Status)
	}
}
