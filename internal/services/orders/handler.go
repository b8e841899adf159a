package orders

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

// Handler handles HTTP requests for comandas
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the handler on /api/comandas.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/estado", h.UpdateEstado)
}

// List handles GET /api/comandas
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	comandas, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("comandas_list_failed", "Failed to list comandas", logger.RequestIDFromContext(r.Context()), err, nil)
		httpx.WriteServiceError(w, r, err, "Error al obtener comandas")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comandas)
}

// Create handles POST /api/comandas
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	var req models.CreateComandaRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	comanda, err := h.service.Create(ctx, &req)
	if err != nil {
		if !errors.Is(err, restaurant.ErrValidation) {
			h.logger.Error("comanda_creation_failed", "Failed to create comanda", requestID, err, map[string]interface{}{
				"mesa_id":    req.MesaID,
				"usuario_id": req.UsuarioID,
			})
		}
		httpx.WriteServiceError(w, r, err, "Error al crear comanda")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, comanda)
}

// UpdateEstado handles PATCH /api/comandas/{id}/estado
func (h *Handler) UpdateEstado(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		httpx.WriteError(w, r, http.StatusNotFound, "Comanda no encontrada")
		return
	}

	var req models.UpdateEstadoRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	comanda, err := h.service.UpdateEstado(r.Context(), id, &req)
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "Comanda no encontrada")
		return
	case err != nil:
		if !errors.Is(err, restaurant.ErrValidation) {
			h.logger.Error("comanda_update_failed", "Failed to update comanda", logger.RequestIDFromContext(r.Context()), err, map[string]interface{}{
				"comanda_id": id,
			})
		}
		httpx.WriteServiceError(w, r, err, "Error al actualizar comanda")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comanda)
}
