package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/repository"
)

func TestEscribirCSV(t *testing.T) {
	motivo := "certificado vencido"
	filas := []repository.FilaCierre{
		{
			Legajo:          1001,
			Apellido:        "Gómez",
			Nombre:          "Ana",
			TipoDescripcion: "Razones particulares",
			FechaInicio:     time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			Dias:            1,
			Estado:          domain.EstadoImpactado,
		},
		{
			Legajo:          1002,
			Apellido:        "Paz",
			Nombre:          "Luis",
			TipoDescripcion: "Examen",
			FechaInicio:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			Dias:            2,
			Estado:          domain.EstadoRechazadoRRHH,
			MotivoRechazo:   &motivo,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EscribirCSV(&buf, filas))

	registros, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, registros, 3)

	assert.Equal(t, Cabeceras, registros[0])
	assert.Equal(t, []string{
		"1001", "Gómez", "Ana", "Razones particulares", "2024-03-04",
		"1", "IMPACTADO", "-", "-",
	}, registros[1])
	assert.Equal(t, []string{
		"1002", "Paz", "Luis", "Examen", "2024-03-05",
		"2", "RECHAZADO_RRHH", "certificado vencido", "-",
	}, registros[2])
}

func TestEscribirCSVVacio(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EscribirCSV(&buf, nil))

	registros, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, registros, 1, "solo la cabecera")
}

func TestNombreArchivo(t *testing.T) {
	assert.Equal(t, "Reporte_Licencias_2024-01-01_al_2024-06-30.csv",
		NombreArchivo("2024-01-01", "2024-06-30"))
	assert.Equal(t, "Reporte_Licencias.csv", NombreArchivo("", ""))
	assert.Equal(t, "Reporte_Licencias.csv", NombreArchivo("2024-01-01", ""))
}
