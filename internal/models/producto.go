package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kitchen-flow/internal/restaurant"
)

// Producto is a row of productos joined with its category name.
type Producto struct {
	ID              int             `json:"id"`
	Nombre          string          `json:"nombre"`
	Descripcion     *string         `json:"descripcion"`
	Precio          decimal.Decimal `json:"precio"`
	CategoriaID     *int            `json:"categoria_id"`
	CategoriaNombre *string         `json:"categoria_nombre"`
	Disponible      bool            `json:"disponible"`
	ImagenURL       *string         `json:"imagen_url"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateProductoRequest struct {
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	CategoriaID *int            `json:"categoria_id"`
	Disponible  *bool           `json:"disponible"`
	ImagenURL   *string         `json:"imagen_url"`
}

func (req *CreateProductoRequest) Validate() error {
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return restaurant.ValidationError{Field: "nombre", Message: "nombre is required"}
	}
	if req.Precio.IsNegative() {
		return restaurant.ValidationError{Field: "precio", Message: "precio must not be negative"}
	}
	if req.CategoriaID != nil && *req.CategoriaID < 1 {
		return restaurant.ValidationError{Field: "categoria_id", Message: "categoria_id must be positive"}
	}
	if req.Disponible == nil {
		available := true
		req.Disponible = &available
	}
	return nil
}
