package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

var tipoArt85 = &domain.TipoLicencia{
	ID:            1,
	Codigo:        "ART_85",
	Descripcion:   "Razones particulares",
	LimiteMensual: 2,
	LimiteAnual:   6,
}

func dia(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func solicitudDe(id int64, codigo string, fecha time.Time, estado domain.EstadoSolicitud) domain.Solicitud {
	return domain.Solicitud{
		ID:          id,
		AgenteID:    1,
		TipoCodigo:  codigo,
		FechaInicio: fecha,
		Dias:        1,
		Estado:      estado,
	}
}

func candidata(fecha time.Time) CandidataValidacion {
	return CandidataValidacion{AgenteID: 1, Tipo: tipoArt85, FechaInicio: fecha}
}

func TestValidarSolicitudTopeMensual(t *testing.T) {
	historial := []domain.Solicitud{
		solicitudDe(1, "ART_85", dia(2024, time.March, 4), domain.EstadoAprobado),
		solicitudDe(2, "ART_85", dia(2024, time.March, 11), domain.EstadoPendienteValidacion),
	}

	err := ValidarSolicitud(candidata(dia(2024, time.March, 20)), historial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tope mensual alcanzado (2).")

	// Same type in a different month is fine.
	assert.NoError(t, ValidarSolicitud(candidata(dia(2024, time.April, 2)), historial))
}

func TestValidarSolicitudTopeAnual(t *testing.T) {
	historial := []domain.Solicitud{
		solicitudDe(1, "ART_85", dia(2024, time.January, 8), domain.EstadoImpactado),
		solicitudDe(2, "ART_85", dia(2024, time.February, 5), domain.EstadoImpactado),
		solicitudDe(3, "ART_85", dia(2024, time.April, 3), domain.EstadoImpactado),
		solicitudDe(4, "ART_85", dia(2024, time.June, 10), domain.EstadoImpactado),
		solicitudDe(5, "ART_85", dia(2024, time.August, 12), domain.EstadoImpactado),
		solicitudDe(6, "ART_85", dia(2024, time.October, 7), domain.EstadoImpactado),
	}

	err := ValidarSolicitud(candidata(dia(2024, time.November, 4)), historial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tope anual alcanzado (6).")

	// A new year resets the count.
	assert.NoError(t, ValidarSolicitud(candidata(dia(2025, time.January, 6)), historial))
}

func TestValidarSolicitudRechazadasNoCuentan(t *testing.T) {
	historial := []domain.Solicitud{
		solicitudDe(1, "ART_85", dia(2024, time.March, 4), domain.EstadoRechazadoRRHH),
		solicitudDe(2, "ART_85", dia(2024, time.March, 11), domain.EstadoRechazadoRRHH),
		solicitudDe(3, "ART_85", dia(2024, time.March, 18), domain.EstadoAprobado),
	}

	assert.NoError(t, ValidarSolicitud(candidata(dia(2024, time.March, 25)), historial))
}

func TestValidarSolicitudFechaDuplicada(t *testing.T) {
	fecha := dia(2024, time.May, 6)
	historial := []domain.Solicitud{
		solicitudDe(1, "EXAMEN", fecha, domain.EstadoPendienteValidacion),
	}

	// The duplicate rule crosses types.
	err := ValidarSolicitud(candidata(fecha), historial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fecha duplicada.")

	// A rejected request frees the date.
	historial[0].Estado = domain.EstadoRechazadoRRHH
	assert.NoError(t, ValidarSolicitud(candidata(fecha), historial))
}

func TestValidarSolicitudExcluyeElPropioRegistro(t *testing.T) {
	fecha := dia(2024, time.July, 1)
	historial := []domain.Solicitud{
		solicitudDe(10, "ART_85", fecha, domain.EstadoPendienteValidacion),
	}

	// Re-validating request 10 against its own stored row must not trip the
	// duplicate rule.
	propia := candidata(fecha)
	id := int64(10)
	propia.ExcluirID = &id
	assert.NoError(t, ValidarSolicitud(propia, historial))
}

func TestValidarSolicitudCodigoInsensibleAMayusculas(t *testing.T) {
	historial := []domain.Solicitud{
		solicitudDe(1, "art_85", dia(2024, time.March, 4), domain.EstadoAprobado),
		solicitudDe(2, "Art_85", dia(2024, time.March, 11), domain.EstadoAprobado),
	}

	err := ValidarSolicitud(candidata(dia(2024, time.March, 20)), historial)
	require.Error(t, err)
}

func TestValidarSolicitudOrdenDeReglas(t *testing.T) {
	// When both the monthly cap and the duplicate rule would fire, the cap
	// message wins: rules run in fixed order and the first violation aborts.
	fecha := dia(2024, time.March, 4)
	historial := []domain.Solicitud{
		solicitudDe(1, "ART_85", fecha, domain.EstadoAprobado),
		solicitudDe(2, "ART_85", dia(2024, time.March, 11), domain.EstadoAprobado),
	}

	err := ValidarSolicitud(candidata(fecha), historial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tope mensual alcanzado")
}

func TestValidarSolicitudSinLimites(t *testing.T) {
	ilimitado := &domain.TipoLicencia{ID: 9, Codigo: "EXAMEN", Descripcion: "Examen"}
	historial := make([]domain.Solicitud, 0, 20)
	for i := 0; i < 20; i++ {
		historial = append(historial,
			solicitudDe(int64(i+1), "EXAMEN", dia(2024, time.March, i+1), domain.EstadoAprobado))
	}

	cand := CandidataValidacion{AgenteID: 1, Tipo: ilimitado, FechaInicio: dia(2024, time.March, 5)}
	err := ValidarSolicitud(cand, historial)
	require.Error(t, err, "la fecha ya ocupada sigue bloqueada")

	cand.FechaInicio = dia(2024, time.April, 1)
	assert.NoError(t, ValidarSolicitud(cand, historial))
}

func TestValidarSolicitudDevuelveBusinessRule(t *testing.T) {
	fecha := dia(2024, time.May, 6)
	historial := []domain.Solicitud{solicitudDe(1, "ART_85", fecha, domain.EstadoAprobado)}

	err := ValidarSolicitud(candidata(fecha), historial)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "BUSINESS_RULE_VIOLATED", domainErr.Code)
	assert.Equal(t, 422, domainErr.HTTPStatus)
}
