// Package server assembles the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kitchen-flow/internal/httpx"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/services/kitchen"
	"kitchen-flow/internal/services/orders"
	"kitchen-flow/internal/services/products"
	"kitchen-flow/internal/services/reservations"
	"kitchen-flow/internal/services/tables"
	"kitchen-flow/internal/services/users"
)

// Clock reports the database server time; /api/db-test uses it to prove
// the connection works.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// Handlers groups the resource handlers mounted under /api.
type Handlers struct {
	Users        *users.Handler
	Products     *products.Handler
	Tables       *tables.Handler
	Orders       *orders.Handler
	Kitchen      *kitchen.Handler
	Reservations *reservations.Handler
}

const healthMessage = "Kitchen Flow Backend - Quinta Estación"

func NewRouter(h Handlers, db Clock, frontendURL string, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpx.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(httpx.CORS(frontendURL))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		r.Get("/db-test", dbTest(db))

		r.Route("/usuarios", h.Users.Routes)
		r.Route("/productos", h.Products.Routes)
		r.Route("/comandas", h.Orders.Routes)
		r.Route("/mesas", func(r chi.Router) {
			h.Tables.Routes(r)
			h.Kitchen.TableRoutes(r)
		})
		r.Route("/cocina", h.Kitchen.KitchenRoutes)
		r.Get("/inventario", h.Kitchen.Inventory)
		r.Get("/inventario/categorias", h.Kitchen.Categories)
		r.Get("/historial/{entityID}", h.Kitchen.History)
		r.Route("/reservas", h.Reservations.Routes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"message":   healthMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func dbTest(db Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		now, err := db.Now(ctx)
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Error al conectar con PostgreSQL",
				"error":   err.Error(),
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Conexión a PostgreSQL exitosa",
			"timestamp": now,
		})
	}
}
