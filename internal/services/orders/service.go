// Package orders is the comandas API: the persisted orders waiters enter
// at the table, stored in PostgreSQL.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

var ErrComandaNotFound = fmt.Errorf("%w: comanda no encontrada", restaurant.ErrNotFound)

// Store is the persistence the service needs; Repository implements it.
type Store interface {
	List(ctx context.Context) ([]models.Comanda, error)
	Create(ctx context.Context, req *models.CreateComandaRequest) (*models.Comanda, error)
	UpdateEstado(ctx context.Context, id int, estado models.ComandaEstado) (*models.Comanda, error)
}

type Service struct {
	store  Store
	sinks  []restaurant.EventSink
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store Store, log *logger.Logger, sinks ...restaurant.EventSink) *Service {
	return &Service{
		store:  store,
		sinks:  sinks,
		logger: log,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]models.Comanda, error) {
	comandas, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list comandas: %w", restaurant.ErrPersistence, err)
	}
	return comandas, nil
}

// Create validates the request and stores the comanda with its items. The
// returned comanda carries the computed total.
func (s *Service) Create(ctx context.Context, req *models.CreateComandaRequest) (*models.Comanda, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	comanda, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: create comanda: %w", restaurant.ErrPersistence, err)
	}

	s.logger.Info("comanda_created", "Comanda created", logger.RequestIDFromContext(ctx), map[string]interface{}{
		"comanda_id": comanda.ID,
		"mesa_id":    req.MesaID,
		"items":      len(req.Items),
		"total":      comanda.Total.StringFixed(2),
	})

	s.record(ctx, restaurant.Event{
		Type:       restaurant.EventComandaCreated,
		EntityID:   strconv.Itoa(comanda.ID),
		TableID:    strconv.Itoa(req.MesaID),
		Status:     string(comanda.Estado),
		Detail:     comanda.Total.StringFixed(2),
		OccurredAt: s.now(),
	})
	return comanda, nil
}

func (s *Service) UpdateEstado(ctx context.Context, id int, req *models.UpdateEstadoRequest) (*models.Comanda, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	comanda, err := s.store.UpdateEstado(ctx, id, req.Estado)
	if errors.Is(err, restaurant.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update comanda %d: %w", restaurant.ErrPersistence, id, err)
	}

	ev := restaurant.Event{
		Type:       restaurant.EventComandaStatusChanged,
		EntityID:   strconv.Itoa(comanda.ID),
		Status:     string(comanda.Estado),
		OccurredAt: s.now(),
	}
	if comanda.MesaID != nil {
		ev.TableID = strconv.Itoa(*comanda.MesaID)
	}
	s.record(ctx, ev)
	return comanda, nil
}

// record hands ev to every sink. Sink failures are logged and otherwise ignored.
func (s *Service) record(ctx context.Context, ev restaurant.Event) {
	ctx = context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, ev); err != nil {
			s.logger.Error("event_record_failed", "Failed to record comanda event", logger.RequestIDFromContext(ctx), err, map[string]interface{}{
				"event_type": ev.Type,
				"entity_id":  ev.EntityID,
			})
		}
	}
}
