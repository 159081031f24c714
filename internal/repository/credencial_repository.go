package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// CredencialRepository manages login credential persistence.
type CredencialRepository interface {
	Create(ctx context.Context, credencial *domain.Credencial) error
	GetByUsuario(ctx context.Context, usuario string) (*domain.Credencial, error)
	// DeleteByUsuario removes stale credentials left behind under the same
	// login identifier, returning how many were purged.
	DeleteByUsuario(ctx context.Context, usuario string) (int64, error)
}

type credencialRepository struct {
	db DB
}

// NewCredencialRepository returns a Postgres-backed implementation.
func NewCredencialRepository(pool *pgxpool.Pool) CredencialRepository {
	return &credencialRepository{db: pool}
}

func (r *credencialRepository) Create(ctx context.Context, credencial *domain.Credencial) error {
	const query = `
        INSERT INTO credenciales (usuario, email, hash)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		credencial.Usuario,
		credencial.Email,
		credencial.Hash,
	).Scan(&credencial.ID, &credencial.CreatedAt)
}

func (r *credencialRepository) GetByUsuario(ctx context.Context, usuario string) (*domain.Credencial, error) {
	const query = `SELECT id, usuario, email, hash, created_at FROM credenciales WHERE usuario=$1`
	var credencial domain.Credencial
	if err := r.db.QueryRow(ctx, query, usuario).Scan(
		&credencial.ID,
		&credencial.Usuario,
		&credencial.Email,
		&credencial.Hash,
		&credencial.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &credencial, nil
}

func (r *credencialRepository) DeleteByUsuario(ctx context.Context, usuario string) (int64, error) {
	const query = `DELETE FROM credenciales WHERE usuario=$1`
	cmd, err := r.db.Exec(ctx, query, usuario)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
