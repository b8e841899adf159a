// Package reservations exposes the reservations board over HTTP.
package reservations

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/restaurant"
)

// Book is the part of restaurant.Service that manages reservations.
type Book interface {
	CreateReservation(ctx context.Context, in restaurant.ReservationInput) (restaurant.Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch restaurant.ReservationPatch) (restaurant.Reservation, error)
	CancelReservation(ctx context.Context, id string) (restaurant.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	AssignTable(ctx context.Context, id string, tableNumber int) (restaurant.Reservation, error)
	AddPreOrderItem(ctx context.Context, id string, req restaurant.LineRequest) (restaurant.Reservation, error)
	RemovePreOrderItem(ctx context.Context, id, lineID string) (restaurant.Reservation, error)
	PreOrderTotal(id string) (decimal.Decimal, error)
	Reservation(id string) (restaurant.Reservation, error)
	Reservations(filter restaurant.ReservationFilter) []restaurant.Reservation
	ReservationStats() restaurant.ReservationStats
}

type Handler struct {
	book   Book
	logger *logger.Logger
}

func NewHandler(book Book, log *logger.Logger) *Handler {
	return &Handler{book: book, logger: log}
}

// Routes mounts the handler on /api/reservas.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/cancelar", h.Cancel)
		r.Post("/mesa", h.AssignTable)
		r.Get("/preorden", h.PreOrder)
		r.Post("/preorden", h.AddPreOrderItem)
		r.Delete("/preorden/{lineID}", h.RemovePreOrderItem)
	})
}

// List handles GET /api/reservas?estado=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter restaurant.ReservationFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
		status, err := restaurant.ParseReservationStatus(raw)
		if err != nil {
			httpx.WriteServiceError(w, r, err, "")
			return
		}
		filter.Status = status
	}
	httpx.WriteJSON(w, http.StatusOK, h.book.Reservations(filter))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.book.ReservationStats())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.book.Reservation(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	in, err := req.input()
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	res, err := h.book.CreateReservation(r.Context(), in)
	if err != nil {
		h.fail(w, r, "reservation_create_failed", err)
		return
	}

	h.logger.Info("reservation_created", "Reservation created", logger.RequestIDFromContext(r.Context()), map[string]interface{}{
		"reservation_id": res.ID,
		"party_size":     res.PartySize,
		"date":           res.Date.Format(dateLayout),
	})
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	patch, err := req.patch()
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	res, err := h.book.UpdateReservation(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, "reservation_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	res, err := h.book.CancelReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "reservation_cancel_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeleteReservation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "reservation_delete_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	TableNumber int `json:"table_number"`
}

func (h *Handler) AssignTable(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	res, err := h.book.AssignTable(r.Context(), chi.URLParam(r, "id"), req.TableNumber)
	if err != nil {
		h.fail(w, r, "reservation_assign_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

type preOrderResponse struct {
	Items []restaurant.LineItem `json:"items"`
	Total decimal.Decimal       `json:"total"`
}

func (h *Handler) PreOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.book.Reservation(id)
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	total, err := h.book.PreOrderTotal(id)
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, preOrderResponse{Items: res.PreOrder, Total: total})
}

func (h *Handler) AddPreOrderItem(w http.ResponseWriter, r *http.Request) {
	var req restaurant.LineRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	res, err := h.book.AddPreOrderItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, "pre_order_add_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) RemovePreOrderItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.book.RemovePreOrderItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"))
	if err != nil {
		h.fail(w, r, "pre_order_remove_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(action, "Reservation operation failed", logger.RequestIDFromContext(r.Context()), err, nil)
	}
	httpx.WriteServiceError(w, r, err, "Error interno del servidor")
}
