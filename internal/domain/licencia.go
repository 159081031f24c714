package domain

import "time"

// TipoLicencia is a catalog entry describing one leave type and its
// business rules. Reference data, seeded by migration.
type TipoLicencia struct {
	ID          int64
	Codigo      string
	Descripcion string
	// TextoParaReloj is the exact string the legacy clock system expects
	// when the request is injected.
	TextoParaReloj string
	RequiereAviso  bool
	EsFranquicia   bool
	// LimiteMensual and LimiteAnual cap non-rejected requests of this type
	// per agent. Zero means unlimited.
	LimiteMensual int
	LimiteAnual   int
	CreatedAt     time.Time
}

// Limitada reports whether the type carries any quota at all.
func (t *TipoLicencia) Limitada() bool {
	return t.LimiteMensual > 0 || t.LimiteAnual > 0
}
