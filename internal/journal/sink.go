package journal

import (
	"context"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/restaurant"
)

// Sink records restaurant events in a Repository.
type Sink struct {
	repo Repository
}

func NewSink(repo Repository) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Record(ctx context.Context, ev restaurant.Event) error {
	entry := FromEvent(ev, logger.RequestIDFromContext(ctx))
	return s.repo.Save(ctx, &entry)
}
