// Package products serves the menu productos. The list is read through a
// cache and invalidated whenever a producto is created.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kitchen-flow/internal/cache"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

var ErrUnknownCategoria = restaurant.ValidationError{Field: "categoria_id", Message: "categoria does not exist"}

type Store interface {
	List(ctx context.Context) ([]models.Producto, error)
	Create(ctx context.Context, req *models.CreateProductoRequest) (*models.Producto, error)
}

type Service struct {
	store  Store
	cache  cache.Cache
	ttl    time.Duration
	logger *logger.Logger
}

func NewService(store Store, c cache.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{store: store, cache: c, ttl: ttl, logger: log}
}

func (s *Service) listKey() string {
	return s.cache.GenerateKey("productos", "all")
}

// List serves the cached list when there is one. Cache failures only cost a
// database round trip.
func (s *Service) List(ctx context.Context) ([]models.Producto, error) {
	requestID := logger.RequestIDFromContext(ctx)
	key := s.listKey()

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache_get_failed", "Failed to read productos from cache", requestID, map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	if cached != "" {
		var productos []models.Producto
		if err := json.Unmarshal([]byte(cached), &productos); err == nil {
			s.logger.Debug("cache_hit", "Productos served from cache", requestID, map[string]interface{}{"key": key})
			return productos, nil
		}
	}

	productos, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list productos: %w", restaurant.ErrPersistence, err)
	}

	if payload, err := json.Marshal(productos); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("cache_set_failed", "Failed to cache productos", requestID, map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return productos, nil
}

func (s *Service) Create(ctx context.Context, req *models.CreateProductoRequest) (*models.Producto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.Create(ctx, req)
	if errors.Is(err, restaurant.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create producto: %w", restaurant.ErrPersistence, err)
	}

	if err := s.cache.Delete(ctx, s.listKey()); err != nil {
		s.logger.Warn("cache_invalidate_failed", "Failed to invalidate productos cache", logger.RequestIDFromContext(ctx), map[string]interface{}{
			"error": err.Error(),
		})
	}
	return p, nil
}
