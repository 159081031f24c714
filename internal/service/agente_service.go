package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// AgenteService covers agent administration and profile building.
type AgenteService struct {
	agentes repository.AgenteRepository
	logger  *zap.Logger
}

// NewAgenteService constructs the service.
func NewAgenteService(agentes repository.AgenteRepository, logger *zap.Logger) *AgenteService {
	return &AgenteService{agentes: agentes, logger: logger}
}

// Perfil decorates the raw agent with the derived flags the client needs.
type Perfil struct {
	Agente *domain.Agente
	EsJefe bool
}

// AgenteCreateInput describes an HR-created employee record.
type AgenteCreateInput struct {
	Legajo          int
	IDSistemaReloj  *int
	Nombre          string
	Apellido        string
	DNI             *string
	Email           *string
	Area            *string
	Categoria       domain.Categoria
	FechaNacimiento *string
	EsRRHH          bool
}

// Crear registers a new agent, typically from an HR import.
func (s *AgenteService) Crear(ctx context.Context, input AgenteCreateInput) (*domain.Agente, error) {
	if input.Legajo <= 0 {
		return nil, apperrors.NewValidationError("legajo requerido", map[string]any{"legajo": input.Legajo})
	}
	if strings.TrimSpace(input.Nombre) == "" || strings.TrimSpace(input.Apellido) == "" {
		return nil, apperrors.NewValidationError("nombre y apellido requeridos", nil)
	}
	categoria := input.Categoria
	if categoria == "" {
		categoria = domain.CategoriaAuxiliar
	}
	if !categoria.Valida() {
		return nil, apperrors.NewValidationError("categoría desconocida", map[string]any{"categoria": categoria})
	}

	if _, err := s.agentes.GetByLegajo(ctx, input.Legajo); err == nil {
		return nil, apperrors.NewStateConflict("ya existe un agente con ese legajo",
			map[string]any{"legajo": input.Legajo})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	agente := &domain.Agente{
		Legajo:         input.Legajo,
		IDSistemaReloj: input.IDSistemaReloj,
		Nombre:         strings.TrimSpace(input.Nombre),
		Apellido:       strings.TrimSpace(input.Apellido),
		DNI:            input.DNI,
		Email:          input.Email,
		Area:           input.Area,
		Categoria:      categoria,
		EsRRHH:         input.EsRRHH,
	}
	if input.FechaNacimiento != nil {
		fecha, err := parseFecha(*input.FechaNacimiento)
		if err != nil {
			return nil, apperrors.NewValidationError("fecha de nacimiento inválida",
				map[string]any{"fecha_nacimiento": *input.FechaNacimiento})
		}
		agente.FechaNacimiento = &fecha
	}

	if err := s.agentes.Create(ctx, agente); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agente, nil
}

func parseFecha(valor string) (time.Time, error) {
	return time.Parse(formatoFecha, valor)
}

// Listar returns agents matching the filter.
func (s *AgenteService) Listar(ctx context.Context, filter repository.AgenteFilter) ([]domain.Agente, error) {
	return s.agentes.List(ctx, filter)
}

// ObtenerPerfil loads an agent with derived flags.
func (s *AgenteService) ObtenerPerfil(ctx context.Context, id int64) (*Perfil, error) {
	agente, err := s.agentes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.PerfilDe(ctx, agente)
}

// PerfilDe derives flags for an already loaded agent.
func (s *AgenteService) PerfilDe(ctx context.Context, agente *domain.Agente) (*Perfil, error) {
	esJefe, err := s.agentes.TieneSubordinados(ctx, agente)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Perfil{Agente: agente, EsJefe: esJefe}, nil
}

// Supervisores lists the candidate supervisors for the agent: same area,
// authority rank. Recomputed on every call, never stored.
func (s *AgenteService) Supervisores(ctx context.Context, agenteID int64) ([]domain.Agente, error) {
	agente, err := s.agentes.GetByID(ctx, agenteID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	candidatos, err := s.agentes.SupervisoresCandidatos(ctx, agente)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return candidatos, nil
}
