package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// TipoLicenciaRepository reads the leave-type catalog.
type TipoLicenciaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TipoLicencia, error)
	GetByCodigo(ctx context.Context, codigo string) (*domain.TipoLicencia, error)
	List(ctx context.Context) ([]domain.TipoLicencia, error)
}

const tipoColumns = `id, codigo, descripcion, texto_para_reloj, requiere_aviso,
        es_franquicia, limite_mensual, limite_anual, created_at`

type tipoLicenciaRepository struct {
	db DB
}

// NewTipoLicenciaRepository returns a Postgres-backed implementation.
func NewTipoLicenciaRepository(pool *pgxpool.Pool) TipoLicenciaRepository {
	return &tipoLicenciaRepository{db: pool}
}

func (r *tipoLicenciaRepository) GetByID(ctx context.Context, id int64) (*domain.TipoLicencia, error) {
	query := `SELECT ` + tipoColumns + ` FROM tipos_licencia WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *tipoLicenciaRepository) GetByCodigo(ctx context.Context, codigo string) (*domain.TipoLicencia, error) {
	query := `SELECT ` + tipoColumns + ` FROM tipos_licencia WHERE LOWER(codigo)=LOWER($1)`
	return r.fetchSingle(ctx, query, codigo)
}

func (r *tipoLicenciaRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TipoLicencia, error) {
	var tipo domain.TipoLicencia
	if err := scanTipo(r.db.QueryRow(ctx, query, arg), &tipo); err != nil {
		return nil, err
	}
	return &tipo, nil
}

func (r *tipoLicenciaRepository) List(ctx context.Context) ([]domain.TipoLicencia, error) {
	query := `SELECT ` + tipoColumns + ` FROM tipos_licencia ORDER BY codigo`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TipoLicencia
	for rows.Next() {
		var tipo domain.TipoLicencia
		if err := scanTipo(rows, &tipo); err != nil {
			return nil, err
		}
		result = append(result, tipo)
	}
	return result, rows.Err()
}

func scanTipo(row pgx.Row, tipo *domain.TipoLicencia) error {
	return row.Scan(
		&tipo.ID,
		&tipo.Codigo,
		&tipo.Descripcion,
		&tipo.TextoParaReloj,
		&tipo.RequiereAviso,
		&tipo.EsFranquicia,
		&tipo.LimiteMensual,
		&tipo.LimiteAnual,
		&tipo.CreatedAt,
	)
}
