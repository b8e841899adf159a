// Package users serves the staff accounts (usuarios).
package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

var (
	ErrUsuarioNotFound = fmt.Errorf("%w: usuario no encontrado", restaurant.ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("%w: email ya registrado", restaurant.ErrConflict)
)

type Store interface {
	List(ctx context.Context) ([]models.Usuario, error)
	Get(ctx context.Context, id int) (*models.Usuario, error)
	Create(ctx context.Context, req *models.CreateUsuarioRequest, passwordHash string) (*models.Usuario, error)
}

type Service struct {
	store  Store
	logger *logger.Logger
	cost   int
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log, cost: bcrypt.DefaultCost}
}

func (s *Service) List(ctx context.Context) ([]models.Usuario, error) {
	usuarios, err := s.store.List(ctx)
	if err != nil {
		return nil, persistence("list usuarios", err)
	}
	return usuarios, nil
}

func (s *Service) Get(ctx context.Context, id int) (*models.Usuario, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, persistence("get usuario", err)
	}
	return u, nil
}

// Create validates the request and stores the usuario with a bcrypt hash
// of the password. The plain password never reaches the database.
func (s *Service) Create(ctx context.Context, req *models.CreateUsuarioRequest) (*models.Usuario, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, restaurant.ValidationError{Field: "password", Message: err.Error()}
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.Create(ctx, req, string(hash))
	if err != nil {
		return nil, persistence("create usuario", err)
	}

	s.logger.Info("usuario_created", "Usuario created", logger.RequestIDFromContext(ctx), map[string]interface{}{
		"usuario_id": u.ID,
		"rol":        u.Rol,
	})
	return u, nil
}

// persistence keeps category errors from the store and wraps everything
// else as ErrPersistence.
func persistence(op string, err error) error {
	if errors.Is(err, restaurant.ErrNotFound) || errors.Is(err, restaurant.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", restaurant.ErrPersistence, op, err)
}
