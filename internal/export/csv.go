package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/feermza/sistema-justificaciones/internal/repository"
)

// Cabeceras is the fixed column order of the closed-requests report.
var Cabeceras = []string{
	"Legajo", "Apellido", "Nombre", "Tipo Licencia", "Fecha Inicio",
	"Días", "Estado", "Motivo Rechazo", "Observaciones",
}

// EscribirCSV renders the closed-requests report. Empty optional fields come
// out as a dash, matching the legacy report format.
func EscribirCSV(w io.Writer, filas []repository.FilaCierre) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Cabeceras); err != nil {
		return err
	}
	for _, fila := range filas {
		registro := []string{
			fmt.Sprintf("%d", fila.Legajo),
			fila.Apellido,
			fila.Nombre,
			fila.TipoDescripcion,
			fila.FechaInicio.Format("2006-01-02"),
			fmt.Sprintf("%d", fila.Dias),
			string(fila.Estado),
			oGuion(fila.MotivoRechazo),
			oGuion(fila.Motivo),
		}
		if err := cw.Write(registro); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// NombreArchivo builds the attachment filename for the given range.
func NombreArchivo(desde, hasta string) string {
	if desde == "" || hasta == "" {
		return "Reporte_Licencias.csv"
	}
	return fmt.Sprintf("Reporte_Licencias_%s_al_%s.csv", desde, hasta)
}

func oGuion(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
