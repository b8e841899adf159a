package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Routes mounts the handler on /api/usuarios.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("usuarios_list_failed", "Failed to list usuarios", logger.RequestIDFromContext(r.Context()), err, nil)
		httpx.WriteServiceError(w, r, err, "Error al obtener usuarios")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, usuarios)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "id must be numeric")
		return
	}

	u, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "Usuario no encontrado")
	case err != nil:
		h.logger.Error("usuario_get_failed", "Failed to get usuario", logger.RequestIDFromContext(r.Context()), err, map[string]interface{}{
			"usuario_id": id,
		})
		httpx.WriteServiceError(w, r, err, "Error al obtener usuario")
	default:
		httpx.WriteJSON(w, http.StatusOK, u)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUsuarioRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	u, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("usuario_creation_failed", "Failed to create usuario", logger.RequestIDFromContext(r.Context()), err, nil)
		}
		httpx.WriteServiceError(w, r, err, "Error al crear usuario")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}
