package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kitchen-flow/internal/restaurant"
)

type ComandaEstado string

const (
	ComandaPendiente     ComandaEstado = "pendiente"
	ComandaEnPreparacion ComandaEstado = "en_preparacion"
	ComandaLista         ComandaEstado = "lista"
	ComandaEntregada     ComandaEstado = "entregada"
	ComandaPagada        ComandaEstado = "pagada"
	ComandaCancelada     ComandaEstado = "cancelada"
)

// Comanda is a row of comandas. MesaNumero and UsuarioNombre come from the
// list query joins and are nil elsewhere.
type Comanda struct {
	ID            int             `json:"id"`
	MesaID        *int            `json:"mesa_id"`
	UsuarioID     *int            `json:"usuario_id"`
	Estado        ComandaEstado   `json:"estado"`
	Total         decimal.Decimal `json:"total"`
	Observaciones *string         `json:"observaciones"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	MesaNumero    *int            `json:"mesa_numero,omitempty"`
	UsuarioNombre *string         `json:"usuario_nombre,omitempty"`
}

type ComandaItem struct {
	ID             int             `json:"id"`
	ComandaID      int             `json:"comanda_id"`
	ProductoID     int             `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Observaciones  *string         `json:"observaciones"`
}

type ComandaItemRequest struct {
	ProductoID     int             `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Observaciones  *string         `json:"observaciones"`
}

// Subtotal is cantidad x precio_unitario.
func (i ComandaItemRequest) Subtotal() decimal.Decimal {
	return i.PrecioUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

type CreateComandaRequest struct {
	MesaID        int                  `json:"mesa_id"`
	UsuarioID     int                  `json:"usuario_id"`
	Items         []ComandaItemRequest `json:"items"`
	Observaciones *string              `json:"observaciones"`
}

func (req *CreateComandaRequest) Validate() error {
	if req.MesaID < 1 {
		return restaurant.ValidationError{Field: "mesa_id", Message: "mesa_id is required"}
	}
	if req.UsuarioID < 1 {
		return restaurant.ValidationError{Field: "usuario_id", Message: "usuario_id is required"}
	}
	if len(req.Items) == 0 {
		return restaurant.ValidationError{Field: "items", Message: "items array cannot be empty"}
	}

	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.ProductoID < 1 {
			return restaurant.ValidationError{Field: prefix + ".producto_id", Message: "producto_id is required"}
		}
		if item.Cantidad < 1 {
			return restaurant.ValidationError{Field: prefix + ".cantidad", Message: "cantidad must be at least 1"}
		}
		if item.PrecioUnitario.IsNegative() {
			return restaurant.ValidationError{Field: prefix + ".precio_unitario", Message: "precio_unitario must not be negative"}
		}
	}
	return nil
}

// Total sums the item subtotals.
func (req *CreateComandaRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type UpdateEstadoRequest struct {
	Estado ComandaEstado `json:"estado"`
}

func (req *UpdateEstadoRequest) Validate() error {
	switch req.Estado {
	case ComandaPendiente, ComandaEnPreparacion, ComandaLista, ComandaEntregada, ComandaPagada, ComandaCancelada:
		return nil
	case "":
		return restaurant.ValidationError{Field: "estado", Message: "estado is required"}
	default:
		return restaurant.ValidationError{Field: "estado", Message: fmt.Sprintf("unknown estado %q", req.Estado)}
	}
}
