package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"kitchen-flow/internal/database"
	"kitchen-flow/internal/models"
)

const uniqueViolation = "23505"

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Usuario, error) {
	rows, err := r.db.Query(ctx, database.ListUsuariosSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query usuarios")
	}
	defer rows.Close()

	usuarios := []models.Usuario{}
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan usuario")
		}
		usuarios = append(usuarios, *u)
	}
	return usuarios, errors.Wrap(rows.Err(), "iterate usuarios")
}

func (r *Repository) Get(ctx context.Context, id int) (*models.Usuario, error) {
	u, err := scanUsuario(r.db.QueryRow(ctx, database.GetUsuarioByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUsuarioNotFound
	}
	return u, errors.Wrapf(err, "get usuario %d", id)
}

// Create stores a new usuario with an already hashed password.
func (r *Repository) Create(ctx context.Context, req *models.CreateUsuarioRequest, passwordHash string) (*models.Usuario, error) {
	u, err := scanUsuario(r.db.QueryRow(ctx, database.InsertUsuarioSQL, req.Nombre, req.Email, passwordHash, req.Rol))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrEmailTaken
	}
	return u, errors.Wrap(err, "insert usuario")
}

func scanUsuario(row pgx.Row) (*models.Usuario, error) {
	var u models.Usuario
	if err := row.Scan(&u.ID, &u.Nombre, &u.Email, &u.Rol, &u.Activo, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
