package events

import (
	"time"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSolicitudCreada    EventType = "solicitud_creada"
	EventEstadoCambiado     EventType = "solicitud_estado_cambiado"
	EventSolicitudEliminada EventType = "solicitud_eliminada"
	EventCuentaActivada     EventType = "cuenta_activada"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	SolicitudID int64       `json:"solicitud_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// SolicitudCreadaPayload carries what the supervisor notice needs.
type SolicitudCreadaPayload struct {
	Solicitud *domain.Solicitud    `json:"solicitud"`
	Agente    *domain.Agente       `json:"agente"`
	Tipo      *domain.TipoLicencia `json:"tipo"`
	Jefe      *domain.Agente       `json:"jefe,omitempty"`
}

// EstadoCambiadoPayload carries both states plus the actors the notification
// templates mention.
type EstadoCambiadoPayload struct {
	Solicitud      *domain.Solicitud      `json:"solicitud"`
	Agente         *domain.Agente         `json:"agente"`
	Tipo           *domain.TipoLicencia   `json:"tipo"`
	Jefe           *domain.Agente         `json:"jefe,omitempty"`
	EstadoAnterior domain.EstadoSolicitud `json:"estado_anterior"`
	EstadoNuevo    domain.EstadoSolicitud `json:"estado_nuevo"`
}

// SolicitudEliminadaPayload lets the gateway warn the supervisor that the
// pending notice was withdrawn by its author.
type SolicitudEliminadaPayload struct {
	Solicitud *domain.Solicitud    `json:"solicitud"`
	Agente    *domain.Agente       `json:"agente"`
	Tipo      *domain.TipoLicencia `json:"tipo"`
	Jefe      *domain.Agente       `json:"jefe,omitempty"`
}

// CuentaActivadaPayload is emitted once the activation flow links a credential.
type CuentaActivadaPayload struct {
	AgenteID int64 `json:"agente_id"`
	Legajo   int   `json:"legajo"`
}
