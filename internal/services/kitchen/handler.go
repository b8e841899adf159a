// Package kitchen exposes the live restaurant board over HTTP: the open
// order of each table, the kitchen queue, dispatched orders and the event
// history of an order or reservation.
package kitchen

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/restaurant"
)

type Handler struct {
	board   Board
	history HistoryRepo
	logger  *logger.Logger
}

func NewHandler(board Board, history HistoryRepo, log *logger.Logger) *Handler {
	return &Handler{
		board:   board,
		history: history,
		logger:  log,
	}
}

// KitchenRoutes mounts on /api/cocina.
func (h *Handler) KitchenRoutes(r chi.Router) {
	r.Get("/comandas", h.Queue)
	r.Get("/stats", h.Stats)
	r.Get("/despachadas", h.Dispatched)
	r.Post("/despachadas/{orderID}/retomar", h.Resume)
}

// TableRoutes mounts on /api/mesas next to the mesas list.
func (h *Handler) TableRoutes(r chi.Router) {
	r.Route("/{tableID}/orden", func(r chi.Router) {
		r.Get("/", h.ActiveOrder)
		r.Post("/", h.OpenOrder)
		r.Post("/items", h.AddLine)
		r.Delete("/items/{lineID}", h.RemoveLine)
		r.Patch("/estado", h.UpdateStatus)
	})
}

// Inventory handles GET /api/inventario?categoria=
func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("categoria"))
	httpx.WriteJSON(w, http.StatusOK, h.board.Inventory(category))
}

// Categories handles GET /api/inventario/categorias
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := append([]string{restaurant.AllCategories}, h.board.InventoryCategories()...)
	httpx.WriteJSON(w, http.StatusOK, categories)
}

// History handles GET /api/historial/{entityID}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	entries, err := h.history.History(r.Context(), entityID)
	if err != nil {
		h.logger.Error("history_query_failed", "Failed to read event history", logger.RequestIDFromContext(r.Context()), err, map[string]interface{}{
			"entity_id": entityID,
		})
		httpx.WriteError(w, r, http.StatusInternalServerError, "Error al obtener historial")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	queue := h.board.KitchenQueue()
	if queue == nil {
		queue = []restaurant.Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, queue)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.board.KitchenStats())
}

func (h *Handler) Dispatched(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.board.DispatchedOrders())
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	order, err := h.board.ResumeOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, "order_resume_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.board.ActiveOrder(chi.URLParam(r, "tableID"))
	if err != nil {
		h.fail(w, r, "order_lookup_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// OpenOrder seats an order at the table in the path. A body table_id is
// ignored.
func (h *Handler) OpenOrder(w http.ResponseWriter, r *http.Request) {
	var in restaurant.OpenOrderInput
	if err := httpx.DecodeJSON(r, &in, true); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	in.TableID = chi.URLParam(r, "tableID")

	order, err := h.board.OpenOrder(r.Context(), in)
	if err != nil {
		h.fail(w, r, "order_open_failed", err)
		return
	}

	h.logger.Info("order_opened", "Order opened", logger.RequestIDFromContext(r.Context()), map[string]interface{}{
		"order_id": order.ID,
		"table_id": order.TableID,
		"lines":    len(order.Items),
	})
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req restaurant.LineRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	order, err := h.board.AddOrderLine(r.Context(), chi.URLParam(r, "tableID"), req)
	if err != nil {
		h.fail(w, r, "order_line_add_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	order, err := h.board.RemoveOrderLine(r.Context(), chi.URLParam(r, "tableID"), chi.URLParam(r, "lineID"))
	if err != nil {
		h.fail(w, r, "order_line_remove_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves the table's order through the kitchen. Setting ready
// dispatches it, so the response is the archived order.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}
	status, err := restaurant.ParseKitchenStatus(req.Status)
	if err != nil {
		httpx.WriteServiceError(w, r, err, "")
		return
	}

	order, err := h.board.UpdateOrderKitchenStatus(r.Context(), chi.URLParam(r, "tableID"), status)
	if err != nil {
		h.fail(w, r, "kitchen_status_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// fail logs server side failures and writes the mapped error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(action, "Restaurant board operation failed", logger.RequestIDFromContext(r.Context()), err, map[string]interface{}{
			"path": r.URL.Path,
		})
	} else {
		h.logger.Debug(action, err.Error(), logger.RequestIDFromContext(r.Context()), nil)
	}
	httpx.WriteServiceError(w, r, err, "Error interno del servidor")
}
