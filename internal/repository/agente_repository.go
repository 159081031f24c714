package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// AgenteFilter captures listing parameters for agents.
type AgenteFilter struct {
	Legajo *int
	DNI    *string
	Area   *string
	Limit  int
	Offset int
}

// AgenteRepository encapsulates agent persistence.
type AgenteRepository interface {
	Create(ctx context.Context, agente *domain.Agente) error
	Update(ctx context.Context, agente *domain.Agente) error
	GetByID(ctx context.Context, id int64) (*domain.Agente, error)
	GetByLegajo(ctx context.Context, legajo int) (*domain.Agente, error)
	List(ctx context.Context, filter AgenteFilter) ([]domain.Agente, error)
	// SupervisoresCandidatos returns the agents that can validate notices
	// for the given agent: same area, authority rank, not the agent itself.
	SupervisoresCandidatos(ctx context.Context, agente *domain.Agente) ([]domain.Agente, error)
	// TieneSubordinados reports whether any agent in the same area could
	// pick this one as supervisor.
	TieneSubordinados(ctx context.Context, agente *domain.Agente) (bool, error)
	VincularCredencial(ctx context.Context, agenteID, credencialID int64) error
}

const agenteColumns = `id, legajo, id_sistema_reloj, nombre, apellido, dni, email, area,
        categoria, fecha_nacimiento, es_rrhh, credencial_id, created_at, updated_at`

type agenteRepository struct {
	db DB
}

// NewAgenteRepository returns a Postgres-backed implementation.
func NewAgenteRepository(pool *pgxpool.Pool) AgenteRepository {
	return &agenteRepository{db: pool}
}

func (r *agenteRepository) Create(ctx context.Context, agente *domain.Agente) error {
	const query = `
        INSERT INTO agentes (legajo, id_sistema_reloj, nombre, apellido, dni, email, area, categoria, fecha_nacimiento, es_rrhh)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		agente.Legajo,
		agente.IDSistemaReloj,
		agente.Nombre,
		agente.Apellido,
		agente.DNI,
		agente.Email,
		agente.Area,
		agente.Categoria,
		agente.FechaNacimiento,
		agente.EsRRHH,
	).Scan(&agente.ID, &agente.CreatedAt, &agente.UpdatedAt)
}

func (r *agenteRepository) Update(ctx context.Context, agente *domain.Agente) error {
	const query = `
        UPDATE agentes SET legajo=$1, id_sistema_reloj=$2, nombre=$3, apellido=$4, dni=$5,
            email=$6, area=$7, categoria=$8, fecha_nacimiento=$9, es_rrhh=$10, credencial_id=$11,
            updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.db.Exec(ctx, query,
		agente.Legajo,
		agente.IDSistemaReloj,
		agente.Nombre,
		agente.Apellido,
		agente.DNI,
		agente.Email,
		agente.Area,
		agente.Categoria,
		agente.FechaNacimiento,
		agente.EsRRHH,
		agente.CredencialID,
		agente.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agenteRepository) GetByID(ctx context.Context, id int64) (*domain.Agente, error) {
	query := `SELECT ` + agenteColumns + ` FROM agentes WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agenteRepository) GetByLegajo(ctx context.Context, legajo int) (*domain.Agente, error) {
	query := `SELECT ` + agenteColumns + ` FROM agentes WHERE legajo=$1`
	return r.fetchSingle(ctx, query, legajo)
}

func (r *agenteRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agente, error) {
	var agente domain.Agente
	if err := scanAgente(r.db.QueryRow(ctx, query, arg), &agente); err != nil {
		return nil, err
	}
	return &agente, nil
}

func (r *agenteRepository) List(ctx context.Context, filter AgenteFilter) ([]domain.Agente, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Legajo != nil {
		args = append(args, *filter.Legajo)
		clauses = append(clauses, fmt.Sprintf("legajo=$%d", len(args)))
	}
	if filter.DNI != nil {
		args = append(args, *filter.DNI)
		clauses = append(clauses, fmt.Sprintf("dni=$%d", len(args)))
	}
	if filter.Area != nil {
		args = append(args, *filter.Area)
		clauses = append(clauses, fmt.Sprintf("area=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM agentes WHERE %s ORDER BY apellido, nombre LIMIT %d OFFSET %d`,
		agenteColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAgentes(rows)
}

func (r *agenteRepository) SupervisoresCandidatos(ctx context.Context, agente *domain.Agente) ([]domain.Agente, error) {
	if agente.Area == nil {
		return nil, nil
	}
	query := `SELECT ` + agenteColumns + `
        FROM agentes
        WHERE area=$1 AND categoria IN ($2,$3,$4) AND id<>$5
        ORDER BY apellido, nombre`
	rows, err := r.db.Query(ctx, query,
		*agente.Area,
		domain.CategoriaDirector,
		domain.CategoriaJefeDepto,
		domain.CategoriaJefeDivision,
		agente.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAgentes(rows)
}

func (r *agenteRepository) TieneSubordinados(ctx context.Context, agente *domain.Agente) (bool, error) {
	if agente.Area == nil || !agente.EsAutoridad() {
		return false, nil
	}
	const query = `SELECT EXISTS(SELECT 1 FROM agentes WHERE area=$1 AND id<>$2)`
	var existe bool
	if err := r.db.QueryRow(ctx, query, *agente.Area, agente.ID).Scan(&existe); err != nil {
		return false, err
	}
	return existe, nil
}

func (r *agenteRepository) VincularCredencial(ctx context.Context, agenteID, credencialID int64) error {
	const query = `UPDATE agentes SET credencial_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, credencialID, agenteID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAgente(row pgx.Row, agente *domain.Agente) error {
	return row.Scan(
		&agente.ID,
		&agente.Legajo,
		&agente.IDSistemaReloj,
		&agente.Nombre,
		&agente.Apellido,
		&agente.DNI,
		&agente.Email,
		&agente.Area,
		&agente.Categoria,
		&agente.FechaNacimiento,
		&agente.EsRRHH,
		&agente.CredencialID,
		&agente.CreatedAt,
		&agente.UpdatedAt,
	)
}

func scanAgentes(rows pgx.Rows) ([]domain.Agente, error) {
	var result []domain.Agente
	for rows.Next() {
		var agente domain.Agente
		if err := scanAgente(rows, &agente); err != nil {
			return nil, err
		}
		result = append(result, agente)
	}
	return result, rows.Err()
}
