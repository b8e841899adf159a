package products

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
)

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Routes mounts the handler on /api/productos.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	productos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("productos_list_failed", "Failed to list productos", logger.RequestIDFromContext(r.Context()), err, nil)
		httpx.WriteServiceError(w, r, err, "Error al obtener productos")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, productos)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductoRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	p, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("producto_creation_failed", "Failed to create producto", logger.RequestIDFromContext(r.Context()), err, nil)
		}
		httpx.WriteServiceError(w, r, err, "Error al crear producto")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}
