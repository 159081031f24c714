package domain

import "time"

// Categoria enumerates the ordered rank scale for agents. The first three
// ranks are empowered to confirm or deny notice on other agents' requests.
type Categoria string

const (
	CategoriaDirector     Categoria = "01"
	CategoriaJefeDepto    Categoria = "02"
	CategoriaJefeDivision Categoria = "03"
	CategoriaSupervisor   Categoria = "04"
	CategoriaOperativo    Categoria = "05"
	CategoriaAuxiliar     Categoria = "06"
)

// EsAutoridad reports whether the rank can validate notices.
func (c Categoria) EsAutoridad() bool {
	switch c {
	case CategoriaDirector, CategoriaJefeDepto, CategoriaJefeDivision:
		return true
	}
	return false
}

// Valida reports whether the value belongs to the rank scale.
func (c Categoria) Valida() bool {
	switch c {
	case CategoriaDirector, CategoriaJefeDepto, CategoriaJefeDivision,
		CategoriaSupervisor, CategoriaOperativo, CategoriaAuxiliar:
		return true
	}
	return false
}

// Agente is an employee record subject to leave-request workflows.
type Agente struct {
	ID              int64
	Legajo          int
	IDSistemaReloj  *int
	Nombre          string
	Apellido        string
	DNI             *string
	Email           *string
	Area            *string
	Categoria       Categoria
	FechaNacimiento *time.Time
	EsRRHH          bool
	CredencialID    *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EsAutoridad reports whether the agent can act as supervisor for peers in
// their area.
func (a *Agente) EsAutoridad() bool {
	return a.Categoria.EsAutoridad()
}

// CuentaActivada reports whether the agent already has a linked login
// credential.
func (a *Agente) CuentaActivada() bool {
	return a.CredencialID != nil
}

// NombreCompleto formats "Apellido, Nombre" for notifications and reports.
func (a *Agente) NombreCompleto() string {
	return a.Apellido + ", " + a.Nombre
}
