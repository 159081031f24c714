package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// CandidataValidacion describes the request being admitted. On creation
// ExcluirID is nil; on a critical edit it holds the request's own ID so the
// record never counts against itself.
type CandidataValidacion struct {
	AgenteID    int64
	Tipo        *domain.TipoLicencia
	FechaInicio time.Time
	ExcluirID   *int64
}

// ValidarSolicitud applies the quota caps and then the duplicate-date rule
// over the agent's full request history. Rejected requests (any state
// containing the rejection marker) never count. Rules run in fixed order and
// the first violation aborts with its own message.
func ValidarSolicitud(candidata CandidataValidacion, historial []domain.Solicitud) error {
	tipo := candidata.Tipo

	if tipo.LimiteMensual > 0 {
		cuenta := contarDelTipo(candidata, historial, true)
		if cuenta >= tipo.LimiteMensual {
			return apperrors.NewBusinessRuleError(
				fmt.Sprintf("Tope mensual alcanzado (%d).", tipo.LimiteMensual))
		}
	}

	if tipo.LimiteAnual > 0 {
		cuenta := contarDelTipo(candidata, historial, false)
		if cuenta >= tipo.LimiteAnual {
			return apperrors.NewBusinessRuleError(
				fmt.Sprintf("Tope anual alcanzado (%d).", tipo.LimiteAnual))
		}
	}

	for i := range historial {
		existente := &historial[i]
		if descartada(existente, candidata.ExcluirID) {
			continue
		}
		if existente.MismaFecha(candidata.FechaInicio) {
			return apperrors.NewBusinessRuleError("Fecha duplicada.")
		}
	}

	return nil
}

// contarDelTipo counts live requests of the candidate's type in the same
// month (or whole year when porMes is false).
func contarDelTipo(candidata CandidataValidacion, historial []domain.Solicitud, porMes bool) int {
	cuenta := 0
	for i := range historial {
		existente := &historial[i]
		if descartada(existente, candidata.ExcluirID) {
			continue
		}
		if !strings.EqualFold(existente.TipoCodigo, candidata.Tipo.Codigo) {
			continue
		}
		if existente.FechaInicio.Year() != candidata.FechaInicio.Year() {
			continue
		}
		if porMes && existente.FechaInicio.Month() != candidata.FechaInicio.Month() {
			continue
		}
		cuenta++
	}
	return cuenta
}

func descartada(existente *domain.Solicitud, excluirID *int64) bool {
	if existente.EsRechazada() {
		return true
	}
	return excluirID != nil && existente.ID == *excluirID
}
