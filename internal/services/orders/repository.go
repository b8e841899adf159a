package orders

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"kitchen-flow/internal/database"
	"kitchen-flow/internal/models"
)

// Repository stores comandas in PostgreSQL.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// List returns every comanda, newest first, with the table number and waiter name.
func (r *Repository) List(ctx context.Context) ([]models.Comanda, error) {
	rows, err := r.db.Query(ctx, database.ListComandasSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query comandas")
	}
	defer rows.Close()

	comandas := []models.Comanda{}
	for rows.Next() {
		var c models.Comanda
		if err := rows.Scan(
			&c.ID, &c.MesaID, &c.UsuarioID, &c.Estado, &c.Total, &c.Observaciones,
			&c.CreatedAt, &c.UpdatedAt, &c.MesaNumero, &c.UsuarioNombre,
		); err != nil {
			return nil, errors.Wrap(err, "scan comanda")
		}
		comandas = append(comandas, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate comandas")
	}
	return comandas, nil
}

// Create inserts the comanda and its items, stores the computed total and
// marks the table occupied, all in one transaction.
func (r *Repository) Create(ctx context.Context, req *models.CreateComandaRequest) (*models.Comanda, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	comanda, err := scanComanda(tx.QueryRow(ctx, database.InsertComandaSQL,
		req.MesaID, req.UsuarioID, req.Observaciones))
	if err != nil {
		return nil, errors.Wrap(err, "insert comanda")
	}

	for _, item := range req.Items {
		if _, err := tx.Exec(ctx, database.InsertComandaItemSQL,
			comanda.ID, item.ProductoID, item.Cantidad, item.PrecioUnitario, item.Subtotal(), item.Observaciones,
		); err != nil {
			return nil, errors.Wrapf(err, "insert item for producto %d", item.ProductoID)
		}
	}

	total := req.Total()
	if _, err := tx.Exec(ctx, database.UpdateComandaTotalSQL, total, comanda.ID); err != nil {
		return nil, errors.Wrap(err, "update comanda total")
	}
	if _, err := tx.Exec(ctx, database.UpdateMesaEstadoSQL, models.MesaOcupada, req.MesaID); err != nil {
		return nil, errors.Wrap(err, "mark mesa ocupada")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit comanda")
	}

	comanda.Total = total
	return comanda, nil
}

// UpdateEstado sets the status of one comanda. An unknown id is
// ErrComandaNotFound.
func (r *Repository) UpdateEstado(ctx context.Context, id int, estado models.ComandaEstado) (*models.Comanda, error) {
	comanda, err := scanComanda(r.db.QueryRow(ctx, database.UpdateComandaEstadoSQL, estado, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrComandaNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "update estado of comanda %d", id)
	}
	return comanda, nil
}

func scanComanda(row pgx.Row) (*models.Comanda, error) {
	var c models.Comanda
	if err := row.Scan(
		&c.ID, &c.MesaID, &c.UsuarioID, &c.Estado, &c.Total, &c.Observaciones, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
