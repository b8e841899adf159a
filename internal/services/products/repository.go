package products

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"kitchen-flow/internal/database"
	"kitchen-flow/internal/models"
)

const foreignKeyViolation = "23503"

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// List returns every producto with its category name, ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Producto, error) {
	rows, err := r.db.Query(ctx, database.ListProductosSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query productos")
	}
	defer rows.Close()

	productos := []models.Producto{}
	for rows.Next() {
		var p models.Producto
		if err := rows.Scan(
			&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.CategoriaID, &p.CategoriaNombre,
			&p.Disponible, &p.ImagenURL, &p.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan producto")
		}
		productos = append(productos, p)
	}
	return productos, errors.Wrap(rows.Err(), "iterate productos")
}

func (r *Repository) Create(ctx context.Context, req *models.CreateProductoRequest) (*models.Producto, error) {
	var p models.Producto
	err := r.db.QueryRow(ctx, database.InsertProductoSQL,
		req.Nombre, req.Descripcion, req.Precio, req.CategoriaID, *req.Disponible, req.ImagenURL,
	).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.CategoriaID, &p.Disponible, &p.ImagenURL, &p.CreatedAt)

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation:
		return nil, ErrUnknownCategoria
	case err != nil:
		return nil, errors.Wrap(err, "insert producto")
	}
	return &p, nil
}
