package dto

import (
	"time"

	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// ValidarIdentidadRequest payload for activation step 1.
type ValidarIdentidadRequest struct {
	Legajo          int    `json:"legajo"`
	DNI             string `json:"dni"`
	FechaNacimiento string `json:"fecha_nacimiento"`
}

// ValidarIdentidadResponse carries the short-lived activation token.
type ValidarIdentidadResponse struct {
	Token          string    `json:"token"`
	ExpiraEn       time.Time `json:"expira_en"`
	TipoCredencial string    `json:"tipo_credencial"`
}

// ActivarCuentaRequest payload for activation step 2.
type ActivarCuentaRequest struct {
	Token string `json:"token"`
	Clave string `json:"clave"`
}

// LoginRequest payload.
type LoginRequest struct {
	Legajo int    `json:"legajo"`
	Clave  string `json:"clave"`
}

// LoginResponse carries the session token plus the agent profile.
type LoginResponse struct {
	Token    string        `json:"token"`
	ExpiraEn time.Time     `json:"expira_en"`
	Agente   AgenteSummary `json:"agente"`
}

// CreateAgenteRequest payload for HR-created employee records.
type CreateAgenteRequest struct {
	Legajo          int              `json:"legajo"`
	IDSistemaReloj  *int             `json:"id_sistema_reloj"`
	Nombre          string           `json:"nombre"`
	Apellido        string           `json:"apellido"`
	DNI             *string          `json:"dni"`
	Email           *string          `json:"email"`
	Area            *string          `json:"area"`
	Categoria       domain.Categoria `json:"categoria"`
	FechaNacimiento *string          `json:"fecha_nacimiento"`
	EsRRHH          bool             `json:"es_rrhh"`
}

// AgenteSummary response.
type AgenteSummary struct {
	ID        int64            `json:"id"`
	Legajo    int              `json:"legajo"`
	Nombre    string           `json:"nombre"`
	Apellido  string           `json:"apellido"`
	Area      *string          `json:"area"`
	Categoria domain.Categoria `json:"categoria"`
	EsRRHH    bool             `json:"es_rrhh"`
	EsJefe    bool             `json:"es_jefe"`
	Activada  bool             `json:"cuenta_activada"`
}

// AgenteDetailResponse provides the full employee record.
type AgenteDetailResponse struct {
	ID              int64            `json:"id"`
	Legajo          int              `json:"legajo"`
	IDSistemaReloj  *int             `json:"id_sistema_reloj"`
	Nombre          string           `json:"nombre"`
	Apellido        string           `json:"apellido"`
	DNI             *string          `json:"dni"`
	Email           *string          `json:"email"`
	Area            *string          `json:"area"`
	Categoria       domain.Categoria `json:"categoria"`
	FechaNacimiento *string          `json:"fecha_nacimiento"`
	EsRRHH          bool             `json:"es_rrhh"`
	Activada        bool             `json:"cuenta_activada"`
	CreatedAt       time.Time        `json:"created_at"`
}
