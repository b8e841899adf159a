package reservations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/restaurant"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	catalog, err := restaurant.NewMemoryCatalog([]restaurant.InventoryItem{
		{ID: "1", Name: "Causa Limeña", Category: restaurant.CategoryFood, Price: decimal.RequireFromString("18.50"), Quantity: 4, Unit: "plato"},
		{ID: "2", Name: "Pisco Sour", Category: "Bebida", Price: decimal.RequireFromString("22.00"), Quantity: 0, Unit: "copa"},
	})
	require.NoError(t, err)

	book := restaurant.NewService(catalog, restaurant.WithClock(func() time.Time {
		return time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	}))

	r := chi.NewRouter()
	r.Route("/api/reservas", NewHandler(book, logger.Nop()).Routes)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func create(t *testing.T, h http.Handler, body string) restaurant.Reservation {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/reservas", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res restaurant.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCreate(t *testing.T) {
	h := newRouter(t)

	res := create(t, h, `{"customer_name":" Rosa Vidal ","date":"2026-05-10","time":"20:30"}`)
	assert.Equal(t, "Rosa Vidal", res.CustomerName)
	assert.Equal(t, 2, res.PartySize)
	assert.Equal(t, restaurant.ReservationPending, res.Status)
	assert.Equal(t, "2026-05-10", res.Date.Format(dateLayout))

	res = create(t, h, `{"customer_name":"Juan"}`)
	assert.Equal(t, "2026-05-02", res.Date.Format(dateLayout))

	rec := call(t, h, http.MethodPatch, "/api/reservas/"+res.ID, `{"table_number":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"customer_name":"  "}`},
		{"bad date", `{"customer_name":"Ana","date":"10/05/2026"}`},
		{"negative party", `{"customer_name":"Ana","party_size":-1}`},
		{"unknown field", `{"nombre":"Ana"}`},
		{"table on create", `{"customer_name":"Ana","table_number":4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, h, http.MethodPost, "/api/reservas", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLifecycle(t *testing.T) {
	h := newRouter(t)
	res := create(t, h, `{"customer_name":"Rosa","party_size":4}`)
	base := "/api/reservas/" + res.ID

	rec := call(t, h, http.MethodPost, base+"/mesa", `{"table_number":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed restaurant.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, restaurant.ReservationConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.TableNumber)
	assert.Equal(t, 7, *confirmed.TableNumber)

	rec = call(t, h, http.MethodPatch, base, `{"status":"seated"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodPatch, base, `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodPatch, base, `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, base+"/cancelar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h, http.MethodPost, base+"/cancelar", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodPost, base+"/preorden", `{"item_id":"1","quantity":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreOrder(t *testing.T) {
	h := newRouter(t)
	res := create(t, h, `{"customer_name":"Carla"}`)
	base := "/api/reservas/" + res.ID

	rec := call(t, h, http.MethodPost, base+"/preorden", `{"item_id":"1","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var updated restaurant.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Len(t, updated.PreOrder, 1)
	assert.Empty(t, updated.PreOrder[0].KitchenStatus)

	rec = call(t, h, http.MethodPost, base+"/preorden", `{"item_id":"2","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, base+"/preorden", `{"item_id":"99","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var summary preOrderResponse
	rec = call(t, h, http.MethodGet, base+"/preorden", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("37")), summary.Total.String())

	rec = call(t, h, http.MethodDelete, base+"/preorden/"+updated.PreOrder[0].ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Empty(t, updated.PreOrder)
	assert.True(t, updated.PreOrderTotal.IsZero())
}

func TestListAndStats(t *testing.T) {
	h := newRouter(t)
	a := create(t, h, `{"customer_name":"A","date":"2026-05-04"}`)
	create(t, h, `{"customer_name":"B","date":"2026-05-03"}`)
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/api/reservas/"+a.ID+"/mesa", `{"table_number":1}`).Code)

	var list []restaurant.Reservation
	rec := call(t, h, http.MethodGet, "/api/reservas", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].CustomerName)

	rec = call(t, h, http.MethodGet, "/api/reservas?estado=confirmed", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].CustomerName)

	rec = call(t, h, http.MethodGet, "/api/reservas?estado=whatever", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var stats restaurant.ReservationStats
	rec = call(t, h, http.MethodGet, "/api/reservas/stats", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, restaurant.ReservationStats{Pending: 1, Confirmed: 1, Total: 2}, stats)
}
