package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/events"
	"github.com/feermza/sistema-justificaciones/internal/export"
	"github.com/feermza/sistema-justificaciones/internal/media"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// TipoEdicion tags an update as administrative (state bookkeeping, no
// business-rule re-check) or critical (date/type changed, validated as a
// fresh submission). Computed once per update and threaded explicitly.
type TipoEdicion int

const (
	EdicionAdministrativa TipoEdicion = iota
	EdicionCritica
)

// SolicitudService coordinates the leave-request lifecycle.
type SolicitudService struct {
	solicitudes repository.SolicitudRepository
	agentes     repository.AgenteRepository
	tipos       repository.TipoLicenciaRepository
	adjuntos    *media.AlmacenAdjuntos
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// SolicitudDependencies bundles collaborators for the service.
type SolicitudDependencies struct {
	SolicitudRepo repository.SolicitudRepository
	AgenteRepo    repository.AgenteRepository
	TipoRepo      repository.TipoLicenciaRepository
	Adjuntos      *media.AlmacenAdjuntos
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewSolicitudService constructs the service.
func NewSolicitudService(deps SolicitudDependencies) *SolicitudService {
	return &SolicitudService{
		solicitudes: deps.SolicitudRepo,
		agentes:     deps.AgenteRepo,
		tipos:       deps.TipoRepo,
		adjuntos:    deps.Adjuntos,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// SolicitudCreateInput describes a new submission. Estado is never
// client-supplied; every request starts pending notice validation.
type SolicitudCreateInput struct {
	TipoID             int64
	FechaInicio        time.Time
	Dias               int
	JefeSeleccionadoID *int64
	Motivo             *string
}

// SolicitudUpdateInput carries the incoming fields of an update; nil means
// "keep the stored value".
type SolicitudUpdateInput struct {
	TipoID        *int64
	FechaInicio   *time.Time
	Dias          *int
	Motivo        *string
	MotivoRechazo *string
	Estado        *domain.EstadoSolicitud
}

// Crear validates and persists a new request, then notifies the chosen
// supervisor. The history read and the insert share one serializable
// transaction so concurrent submissions cannot both pass the quota count.
func (s *SolicitudService) Crear(ctx context.Context, agente *domain.Agente, input SolicitudCreateInput) (*domain.Solicitud, error) {
	if input.Dias <= 0 {
		return nil, apperrors.NewValidationError("dias debe ser mayor a cero", map[string]any{"dias": input.Dias})
	}

	tipo, err := s.tipos.GetByID(ctx, input.TipoID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var jefe *domain.Agente
	if input.JefeSeleccionadoID != nil {
		jefe, err = s.agentes.GetByID(ctx, *input.JefeSeleccionadoID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !jefe.EsAutoridad() {
			return nil, apperrors.NewValidationError(
				"el jefe seleccionado no tiene categoría de autoridad",
				map[string]any{"jefe_seleccionado": jefe.Legajo})
		}
	}

	solicitud := &domain.Solicitud{
		AgenteID:           agente.ID,
		TipoID:             tipo.ID,
		TipoCodigo:         tipo.Codigo,
		FechaInicio:        input.FechaInicio,
		Dias:               input.Dias,
		JefeSeleccionadoID: input.JefeSeleccionadoID,
		Motivo:             input.Motivo,
		Estado:             domain.EstadoPendienteValidacion,
	}

	candidata := CandidataValidacion{
		AgenteID:    agente.ID,
		Tipo:        tipo,
		FechaInicio: input.FechaInicio,
	}
	err = s.solicitudes.EnSerializable(ctx, func(tx repository.SolicitudRepository) error {
		historial, err := tx.HistorialAgente(ctx, agente.ID)
		if err != nil {
			return err
		}
		if err := ValidarSolicitud(candidata, historial); err != nil {
			return err
		}
		return tx.Create(ctx, solicitud)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventSolicitudCreada,
		SolicitudID: solicitud.ID,
		Payload: events.SolicitudCreadaPayload{
			Solicitud: solicitud,
			Agente:    agente,
			Tipo:      tipo,
			Jefe:      jefe,
		},
	})
	return solicitud, nil
}

// Obtener fetches one request, enforcing visibility: the requester, the
// chosen supervisor and HR may read it.
func (s *SolicitudService) Obtener(ctx context.Context, actor *domain.Agente, id int64) (*domain.Solicitud, error) {
	solicitud, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !puedeVer(actor, solicitud) {
		return nil, apperrors.NewForbidden("no puede acceder a esta solicitud")
	}
	return solicitud, nil
}

// Listar returns requests matching the filter.
func (s *SolicitudService) Listar(ctx context.Context, filter repository.SolicitudFilter) ([]domain.Solicitud, error) {
	return s.solicitudes.ListWithFilter(ctx, filter)
}

// Actualizar applies an update, classifying it once as administrative or
// critical. Critical edits re-run full validation as a fresh submission
// attributed to the same agent, excluding the record itself.
func (s *SolicitudService) Actualizar(ctx context.Context, actor *domain.Agente, id int64, input SolicitudUpdateInput) (*domain.Solicitud, error) {
	solicitud, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !puedeVer(actor, solicitud) {
		return nil, apperrors.NewForbidden("no puede modificar esta solicitud")
	}

	estadoAnterior := solicitud.Estado
	if input.Estado != nil && *input.Estado != estadoAnterior {
		if err := s.autorizarCambioEstado(actor, solicitud, *input.Estado); err != nil {
			return nil, err
		}
	}

	edicion := ClasificarEdicion(solicitud, input)

	tipo, err := s.aplicarCampos(ctx, solicitud, input)
	if err != nil {
		return nil, err
	}

	if edicion == EdicionCritica {
		candidata := CandidataValidacion{
			AgenteID:    solicitud.AgenteID,
			Tipo:        tipo,
			FechaInicio: solicitud.FechaInicio,
			ExcluirID:   &solicitud.ID,
		}
		err = s.solicitudes.EnSerializable(ctx, func(tx repository.SolicitudRepository) error {
			historial, err := tx.HistorialAgente(ctx, solicitud.AgenteID)
			if err != nil {
				return err
			}
			if err := ValidarSolicitud(candidata, historial); err != nil {
				return err
			}
			return tx.Update(ctx, solicitud)
		})
	} else {
		err = s.solicitudes.Update(ctx, solicitud)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if solicitud.Estado != estadoAnterior {
		agente, jefe, err := s.cargarParticipantes(ctx, solicitud)
		if err != nil {
			s.logger.Warn("no se pudieron cargar participantes para notificar", zap.Error(err))
		} else {
			s.publish(ctx, events.Event{
				Type:        events.EventEstadoCambiado,
				SolicitudID: solicitud.ID,
				Payload: events.EstadoCambiadoPayload{
					Solicitud:      solicitud,
					Agente:         agente,
					Tipo:           tipo,
					Jefe:           jefe,
					EstadoAnterior: estadoAnterior,
					EstadoNuevo:    solicitud.Estado,
				},
			})
		}
	}
	return solicitud, nil
}

// Eliminar removes a request, permitted only while it still awaits notice
// validation. The chosen supervisor gets a withdrawal notice so the pending
// item does not linger in their queue.
func (s *SolicitudService) Eliminar(ctx context.Context, actor *domain.Agente, id int64) error {
	solicitud, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if actor.ID != solicitud.AgenteID && !actor.EsRRHH {
		return apperrors.NewForbidden("solo el solicitante puede eliminar su solicitud")
	}
	if solicitud.Estado != domain.EstadoPendienteValidacion {
		return apperrors.NewStateConflict(
			fmt.Sprintf("No se puede eliminar esta solicitud porque ya se encuentra en estado '%s'. Comuníquese con RRHH.", solicitud.Estado),
			map[string]any{"estado": solicitud.Estado})
	}

	agente, jefe, err := s.cargarParticipantes(ctx, solicitud)
	if err != nil {
		return apperrors.MapError(err)
	}
	tipo, err := s.tipos.GetByID(ctx, solicitud.TipoID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.solicitudes.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventSolicitudEliminada,
		SolicitudID: id,
		Payload: events.SolicitudEliminadaPayload{
			Solicitud: solicitud,
			Agente:    agente,
			Tipo:      tipo,
			Jefe:      jefe,
		},
	})
	return nil
}

// AdjuntarArchivo stores an uploaded certificate and records its key.
func (s *SolicitudService) AdjuntarArchivo(ctx context.Context, actor *domain.Agente, id int64, nombre string, contenido []byte) (*domain.Solicitud, error) {
	solicitud, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.ID != solicitud.AgenteID && !actor.EsRRHH {
		return nil, apperrors.NewForbidden("solo el solicitante puede adjuntar archivos")
	}

	clave, err := s.adjuntos.Guardar(nombre, contenido)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	solicitud.ArchivoAdjunto = &clave
	if err := s.solicitudes.Update(ctx, solicitud); err != nil {
		return nil, apperrors.MapError(err)
	}
	return solicitud, nil
}

// ExportarCerradas streams the closed-requests CSV report.
func (s *SolicitudService) ExportarCerradas(ctx context.Context, w io.Writer, desde, hasta *time.Time) error {
	filas, err := s.solicitudes.ListCerradas(ctx, desde, hasta)
	if err != nil {
		return apperrors.MapError(err)
	}
	return export.EscribirCSV(w, filas)
}

// ClasificarEdicion decides once whether the update must re-run business
// validation: it is administrative when the effective start date and type,
// after merging incoming fields with stored values, match what is stored.
func ClasificarEdicion(actual *domain.Solicitud, input SolicitudUpdateInput) TipoEdicion {
	fecha := actual.FechaInicio
	if input.FechaInicio != nil {
		fecha = *input.FechaInicio
	}
	tipoID := actual.TipoID
	if input.TipoID != nil {
		tipoID = *input.TipoID
	}
	if domain.MismoDia(fecha, actual.FechaInicio) && tipoID == actual.TipoID {
		return EdicionAdministrativa
	}
	return EdicionCritica
}

func (s *SolicitudService) autorizarCambioEstado(actor *domain.Agente, solicitud *domain.Solicitud, destino domain.EstadoSolicitud) error {
	if !destino.Valida() {
		return apperrors.NewValidationError("estado desconocido", map[string]any{"estado": destino})
	}
	if !solicitud.Estado.TransicionValida(destino) {
		return apperrors.NewStateConflict(
			fmt.Sprintf("transición de estado inválida: %s -> %s", solicitud.Estado, destino), nil)
	}

	switch destino {
	case domain.EstadoAvisoConfirmado, domain.EstadoAvisoNegado:
		esJefeElegido := solicitud.JefeSeleccionadoID != nil && *solicitud.JefeSeleccionadoID == actor.ID
		if !esJefeElegido && !actor.EsRRHH {
			return apperrors.NewForbidden("solo el jefe seleccionado puede validar el aviso")
		}
	case domain.EstadoAprobado, domain.EstadoRechazadoRRHH, domain.EstadoImpactado:
		if !actor.EsRRHH {
			return apperrors.NewForbidden("solo RRHH puede resolver la solicitud")
		}
	}
	return nil
}

// aplicarCampos merges incoming fields into the stored record and returns
// the effective leave type.
func (s *SolicitudService) aplicarCampos(ctx context.Context, solicitud *domain.Solicitud, input SolicitudUpdateInput) (*domain.TipoLicencia, error) {
	if input.TipoID != nil {
		solicitud.TipoID = *input.TipoID
	}
	tipo, err := s.tipos.GetByID(ctx, solicitud.TipoID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	solicitud.TipoCodigo = tipo.Codigo

	if input.FechaInicio != nil {
		solicitud.FechaInicio = *input.FechaInicio
	}
	if input.Dias != nil {
		if *input.Dias <= 0 {
			return nil, apperrors.NewValidationError("dias debe ser mayor a cero", map[string]any{"dias": *input.Dias})
		}
		solicitud.Dias = *input.Dias
	}
	if input.Motivo != nil {
		solicitud.Motivo = input.Motivo
	}
	if input.MotivoRechazo != nil {
		solicitud.MotivoRechazo = input.MotivoRechazo
	}
	if input.Estado != nil {
		solicitud.Estado = *input.Estado
	}
	return tipo, nil
}

func (s *SolicitudService) cargarParticipantes(ctx context.Context, solicitud *domain.Solicitud) (agente, jefe *domain.Agente, err error) {
	agente, err = s.agentes.GetByID(ctx, solicitud.AgenteID)
	if err != nil {
		return nil, nil, err
	}
	if solicitud.JefeSeleccionadoID != nil {
		jefe, err = s.agentes.GetByID(ctx, *solicitud.JefeSeleccionadoID)
		if err != nil {
			return nil, nil, err
		}
	}
	return agente, jefe, nil
}

func (s *SolicitudService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("fallo al publicar evento", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func puedeVer(actor *domain.Agente, solicitud *domain.Solicitud) bool {
	if actor.EsRRHH || actor.ID == solicitud.AgenteID {
		return true
	}
	return solicitud.JefeSeleccionadoID != nil && *solicitud.JefeSeleccionadoID == actor.ID
}
