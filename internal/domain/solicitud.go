package domain

import (
	"strings"
	"time"
)

// EstadoSolicitud enumerates lifecycle states for leave requests.
type EstadoSolicitud string

const (
	EstadoPendienteValidacion EstadoSolicitud = "PENDIENTE_VALIDACION"
	EstadoAvisoConfirmado     EstadoSolicitud = "AVISO_CONFIRMADO"
	EstadoAvisoNegado         EstadoSolicitud = "AVISO_NEGADO"
	EstadoAprobado            EstadoSolicitud = "APROBADO"
	EstadoRechazadoRRHH       EstadoSolicitud = "RECHAZADO_RRHH"
	EstadoImpactado           EstadoSolicitud = "IMPACTADO"
)

// marcaRechazo is the substring shared by every rejection-flavored state.
// Quota and duplicate counting matches on it, never on exact equality.
const marcaRechazo = "RECHAZADO"

// Valida reports whether the value belongs to the state set.
func (e EstadoSolicitud) Valida() bool {
	switch e {
	case EstadoPendienteValidacion, EstadoAvisoConfirmado, EstadoAvisoNegado,
		EstadoAprobado, EstadoRechazadoRRHH, EstadoImpactado:
		return true
	}
	return false
}

// EsRechazo reports whether the state counts as rejected for quota and
// duplicate purposes.
func (e EstadoSolicitud) EsRechazo() bool {
	return strings.Contains(string(e), marcaRechazo)
}

// Cerrado reports whether the request reached a closing state, the set the
// report exporter cares about.
func (e EstadoSolicitud) Cerrado() bool {
	return e == EstadoImpactado || e == EstadoRechazadoRRHH
}

// transiciones maps each state to the states reachable from it.
var transiciones = map[EstadoSolicitud][]EstadoSolicitud{
	EstadoPendienteValidacion: {EstadoAvisoConfirmado, EstadoAvisoNegado},
	EstadoAvisoConfirmado:     {EstadoAprobado, EstadoRechazadoRRHH},
	EstadoAvisoNegado:         {EstadoRechazadoRRHH, EstadoAprobado},
	EstadoAprobado:            {EstadoImpactado},
}

// TransicionValida reports whether estado destino is reachable from e.
func (e EstadoSolicitud) TransicionValida(destino EstadoSolicitud) bool {
	for _, permitido := range transiciones[e] {
		if permitido == destino {
			return true
		}
	}
	return false
}

// Solicitud is the transactional entity: one absence-justification request
// filed by an agent.
type Solicitud struct {
	ID                 int64
	AgenteID           int64
	TipoID             int64
	TipoCodigo         string
	FechaSolicitud     time.Time
	FechaInicio        time.Time
	Dias               int
	JefeSeleccionadoID *int64
	Motivo             *string
	ArchivoAdjunto     *string
	MotivoRechazo      *string
	Estado             EstadoSolicitud
	UpdatedAt          time.Time
}

// EsRechazada reports whether the request sits in a rejected state.
func (s *Solicitud) EsRechazada() bool {
	return s.Estado.EsRechazo()
}

// MismaFecha compares start dates ignoring the time component.
func (s *Solicitud) MismaFecha(fecha time.Time) bool {
	return MismoDia(s.FechaInicio, fecha)
}

// MismoDia reports whether two timestamps fall on the same calendar day.
func MismoDia(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
