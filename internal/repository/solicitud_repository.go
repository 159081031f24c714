package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// SolicitudFilter captures listing parameters for leave requests.
type SolicitudFilter struct {
	AgenteID *int64
	// JefeID restricts to requests whose chosen supervisor is this agent.
	JefeID           *int64
	Estados          []domain.EstadoSolicitud
	EstadoNoContiene *string
	FechaDesde       *time.Time
	FechaHasta       *time.Time
	Limit            int
	Offset           int
}

// FilaCierre is one row of the closed-requests report, joined with the
// requesting agent and the leave type.
type FilaCierre struct {
	Legajo          int
	Apellido        string
	Nombre          string
	TipoDescripcion string
	FechaInicio     time.Time
	Dias            int
	Estado          domain.EstadoSolicitud
	MotivoRechazo   *string
	Motivo          *string
}

// SolicitudRepository encapsulates leave-request persistence.
type SolicitudRepository interface {
	Create(ctx context.Context, solicitud *domain.Solicitud) error
	Update(ctx context.Context, solicitud *domain.Solicitud) error
	GetByID(ctx context.Context, id int64) (*domain.Solicitud, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter SolicitudFilter) ([]domain.Solicitud, error)
	// HistorialAgente returns every request of the agent, rejected ones
	// included; quota and duplicate rules filter on their own.
	HistorialAgente(ctx context.Context, agenteID int64) ([]domain.Solicitud, error)
	// ListCerradas returns the report rows for closed requests, oldest first.
	ListCerradas(ctx context.Context, desde, hasta *time.Time) ([]FilaCierre, error)
	// EnSerializable runs fn against a repository bound to a serializable
	// transaction, so the quota count and the subsequent write commit
	// atomically. Calling it on an already transactional repository reuses
	// the open transaction.
	EnSerializable(ctx context.Context, fn func(SolicitudRepository) error) error
}

const solicitudColumns = `s.id, s.agente_id, s.tipo_id, t.codigo, s.fecha_solicitud, s.fecha_inicio,
        s.dias, s.jefe_seleccionado_id, s.motivo, s.archivo_adjunto, s.motivo_rechazo, s.estado, s.updated_at`

type solicitudRepository struct {
	db   DB
	pool *pgxpool.Pool
}

// NewSolicitudRepository returns a Postgres-backed implementation.
func NewSolicitudRepository(pool *pgxpool.Pool) SolicitudRepository {
	return &solicitudRepository{db: pool, pool: pool}
}

func (r *solicitudRepository) Create(ctx context.Context, solicitud *domain.Solicitud) error {
	const query = `
        INSERT INTO solicitudes (agente_id, tipo_id, fecha_inicio, dias, jefe_seleccionado_id, motivo, archivo_adjunto, estado)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, fecha_solicitud, updated_at`
	return r.db.QueryRow(ctx, query,
		solicitud.AgenteID,
		solicitud.TipoID,
		solicitud.FechaInicio,
		solicitud.Dias,
		solicitud.JefeSeleccionadoID,
		solicitud.Motivo,
		solicitud.ArchivoAdjunto,
		solicitud.Estado,
	).Scan(&solicitud.ID, &solicitud.FechaSolicitud, &solicitud.UpdatedAt)
}

func (r *solicitudRepository) Update(ctx context.Context, solicitud *domain.Solicitud) error {
	const query = `
        UPDATE solicitudes SET tipo_id=$1, fecha_inicio=$2, dias=$3, jefe_seleccionado_id=$4,
            motivo=$5, archivo_adjunto=$6, motivo_rechazo=$7, estado=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		solicitud.TipoID,
		solicitud.FechaInicio,
		solicitud.Dias,
		solicitud.JefeSeleccionadoID,
		solicitud.Motivo,
		solicitud.ArchivoAdjunto,
		solicitud.MotivoRechazo,
		solicitud.Estado,
		solicitud.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *solicitudRepository) GetByID(ctx context.Context, id int64) (*domain.Solicitud, error) {
	query := `SELECT ` + solicitudColumns + `
        FROM solicitudes s JOIN tipos_licencia t ON t.id = s.tipo_id
        WHERE s.id=$1`
	var solicitud domain.Solicitud
	if err := scanSolicitud(r.db.QueryRow(ctx, query, id), &solicitud); err != nil {
		return nil, err
	}
	return &solicitud, nil
}

func (r *solicitudRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM solicitudes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *solicitudRepository) ListWithFilter(ctx context.Context, filter SolicitudFilter) ([]domain.Solicitud, error) {
	base := `SELECT ` + solicitudColumns + `
        FROM solicitudes s JOIN tipos_licencia t ON t.id = s.tipo_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AgenteID != nil {
		args = append(args, *filter.AgenteID)
		clauses = append(clauses, fmt.Sprintf("s.agente_id=$%d", len(args)))
	}
	if filter.JefeID != nil {
		args = append(args, *filter.JefeID)
		clauses = append(clauses, fmt.Sprintf("s.jefe_seleccionado_id=$%d", len(args)))
	}
	if len(filter.Estados) > 0 {
		placeholders := make([]string, len(filter.Estados))
		for i, estado := range filter.Estados {
			args = append(args, estado)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("s.estado IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.EstadoNoContiene != nil {
		args = append(args, "%"+*filter.EstadoNoContiene+"%")
		clauses = append(clauses, fmt.Sprintf("s.estado NOT LIKE $%d", len(args)))
	}
	if filter.FechaDesde != nil {
		args = append(args, *filter.FechaDesde)
		clauses = append(clauses, fmt.Sprintf("s.fecha_inicio >= $%d", len(args)))
	}
	if filter.FechaHasta != nil {
		args = append(args, *filter.FechaHasta)
		clauses = append(clauses, fmt.Sprintf("s.fecha_inicio <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.fecha_inicio DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSolicitudes(rows)
}

func (r *solicitudRepository) HistorialAgente(ctx context.Context, agenteID int64) ([]domain.Solicitud, error) {
	query := `SELECT ` + solicitudColumns + `
        FROM solicitudes s JOIN tipos_licencia t ON t.id = s.tipo_id
        WHERE s.agente_id=$1
        ORDER BY s.fecha_inicio`
	rows, err := r.db.Query(ctx, query, agenteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSolicitudes(rows)
}

func (r *solicitudRepository) ListCerradas(ctx context.Context, desde, hasta *time.Time) ([]FilaCierre, error) {
	base := `SELECT a.legajo, a.apellido, a.nombre, t.descripcion, s.fecha_inicio, s.dias,
               s.estado, s.motivo_rechazo, s.motivo
        FROM solicitudes s
        JOIN agentes a ON a.id = s.agente_id
        JOIN tipos_licencia t ON t.id = s.tipo_id`
	clauses := []string{"s.estado IN ($1,$2)"}
	args := []any{domain.EstadoImpactado, domain.EstadoRechazadoRRHH}

	if desde != nil && hasta != nil {
		args = append(args, *desde, *hasta)
		clauses = append(clauses, fmt.Sprintf("s.fecha_inicio BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.fecha_inicio`, base, strings.Join(clauses, " AND "))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []FilaCierre
	for rows.Next() {
		var fila FilaCierre
		if err := rows.Scan(
			&fila.Legajo,
			&fila.Apellido,
			&fila.Nombre,
			&fila.TipoDescripcion,
			&fila.FechaInicio,
			&fila.Dias,
			&fila.Estado,
			&fila.MotivoRechazo,
			&fila.Motivo,
		); err != nil {
			return nil, err
		}
		result = append(result, fila)
	}
	return result, rows.Err()
}

func (r *solicitudRepository) EnSerializable(ctx context.Context, fn func(SolicitudRepository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&solicitudRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanSolicitud(row pgx.Row, solicitud *domain.Solicitud) error {
	return row.Scan(
		&solicitud.ID,
		&solicitud.AgenteID,
		&solicitud.TipoID,
		&solicitud.TipoCodigo,
		&solicitud.FechaSolicitud,
		&solicitud.FechaInicio,
		&solicitud.Dias,
		&solicitud.JefeSeleccionadoID,
		&solicitud.Motivo,
		&solicitud.ArchivoAdjunto,
		&solicitud.MotivoRechazo,
		&solicitud.Estado,
		&solicitud.UpdatedAt,
	)
}

func scanSolicitudes(rows pgx.Rows) ([]domain.Solicitud, error) {
	var result []domain.Solicitud
	for rows.Next() {
		var solicitud domain.Solicitud
		if err := scanSolicitud(rows, &solicitud); err != nil {
			return nil, err
		}
		result = append(result, solicitud)
	}
	return result, rows.Err()
}
