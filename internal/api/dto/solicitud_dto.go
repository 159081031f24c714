package dto

import (
	"time"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// CreateSolicitudRequest payload. Dates travel as "2006-01-02"; estado is
// never accepted from the client.
type CreateSolicitudRequest struct {
	TipoID             int64   `json:"tipo_id"`
	FechaInicio        string  `json:"fecha_inicio"`
	Dias               int     `json:"dias"`
	JefeSeleccionadoID *int64  `json:"jefe_seleccionado_id"`
	Motivo             *string `json:"motivo"`
}

// UpdateSolicitudRequest payload; absent fields keep their stored value.
type UpdateSolicitudRequest struct {
	TipoID        *int64                  `json:"tipo_id"`
	FechaInicio   *string                 `json:"fecha_inicio"`
	Dias          *int                    `json:"dias"`
	Motivo        *string                 `json:"motivo"`
	MotivoRechazo *string                 `json:"motivo_rechazo"`
	Estado        *domain.EstadoSolicitud `json:"estado"`
}

// SolicitudResponse is the representation returned by every request endpoint.
type SolicitudResponse struct {
	ID                 int64                  `json:"id"`
	AgenteID           int64                  `json:"agente_id"`
	TipoID             int64                  `json:"tipo_id"`
	TipoCodigo         string                 `json:"tipo_codigo"`
	FechaSolicitud     time.Time              `json:"fecha_solicitud"`
	FechaInicio        string                 `json:"fecha_inicio"`
	Dias               int                    `json:"dias"`
	JefeSeleccionadoID *int64                 `json:"jefe_seleccionado_id"`
	Motivo             *string                `json:"motivo"`
	ArchivoAdjunto     *string                `json:"archivo_adjunto"`
	MotivoRechazo      *string                `json:"motivo_rechazo"`
	Estado             domain.EstadoSolicitud `json:"estado"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// TipoLicenciaResponse is one catalog entry.
type TipoLicenciaResponse struct {
	ID             int64  `json:"id"`
	Codigo         string `json:"codigo"`
	Descripcion    string `json:"descripcion"`
	TextoParaReloj string `json:"texto_para_reloj"`
	RequiereAviso  bool   `json:"requiere_aviso"`
	EsFranquicia   bool   `json:"es_franquicia"`
	LimiteMensual  int    `json:"limite_mensual"`
	LimiteAnual    int    `json:"limite_anual"`
}
