// Package tables serves the dining room tables (mesas) and tells the
// database when the restaurant core seats an order at one.
package tables

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"kitchen-flow/internal/database"
	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

var ErrMesaNotFound = fmt.Errorf("%w: mesa no encontrada", restaurant.ErrNotFound)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Mesa, error) {
	rows, err := r.db.Query(ctx, database.ListMesasSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query mesas")
	}
	defer rows.Close()

	mesas := []models.Mesa{}
	for rows.Next() {
		var m models.Mesa
		if err := rows.Scan(&m.ID, &m.Numero, &m.Capacidad, &m.Estado, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan mesa")
		}
		mesas = append(mesas, m)
	}
	return mesas, errors.Wrap(rows.Err(), "iterate mesas")
}

// SetEstado updates one mesa. An unknown id is ErrMesaNotFound.
func (r *Repository) SetEstado(ctx context.Context, id int, estado models.MesaEstado) error {
	tag, err := r.db.Pool.Exec(ctx, database.UpdateMesaEstadoSQL, estado, id)
	if err != nil {
		return errors.Wrapf(err, "update estado of mesa %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrMesaNotFound
	}
	return nil
}

type Store interface {
	List(ctx context.Context) ([]models.Mesa, error)
	SetEstado(ctx context.Context, id int, estado models.MesaEstado) error
}

// Directory is the restaurant.TableDirectory backed by the mesas table.
// Table ids are mesa ids.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

func (d *Directory) MarkOccupied(ctx context.Context, tableID string) error {
	id, err := strconv.Atoi(tableID)
	if err != nil || id < 1 {
		return restaurant.ValidationError{Field: "table_id", Message: fmt.Sprintf("%q is not a mesa id", tableID)}
	}
	return d.store.SetEstado(ctx, id, models.MesaOcupada)
}

type Handler struct {
	store  Store
	logger *logger.Logger
}

func NewHandler(store Store, log *logger.Logger) *Handler {
	return &Handler{store: store, logger: log}
}

// Routes mounts the list on /api/mesas. The per-table order routes live
// in the kitchen package.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mesas, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("mesas_list_failed", "Failed to list mesas", logger.RequestIDFromContext(r.Context()), err, nil)
		httpx.WriteError(w, r, http.StatusInternalServerError, "Error al obtener mesas")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mesas)
}
