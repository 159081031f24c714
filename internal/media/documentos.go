package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/config"
	"github.com/feermza/sistema-justificaciones/internal/domain"
)

// GeneradorPDF renders the backing record of an applied request under
// {root}/legajos/{legajo}/{año}/solicitud_{id}_{codigo}.pdf.
type GeneradorPDF struct {
	root   string
	logger *zap.Logger
}

// NewGeneradorPDF builds the generator.
func NewGeneradorPDF(cfg config.MediaConfig, logger *zap.Logger) *GeneradorPDF {
	return &GeneradorPDF{root: cfg.Root, logger: logger}
}

// GenerarRespaldo writes the PDF and returns its path.
func (g *GeneradorPDF) GenerarRespaldo(solicitud *domain.Solicitud, agente *domain.Agente, tipo *domain.TipoLicencia) (string, error) {
	dir := filepath.Join(g.root, "legajos",
		strconv.Itoa(agente.Legajo),
		strconv.Itoa(solicitud.FechaInicio.Year()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de legajo: %w", err)
	}

	ruta := filepath.Join(dir, fmt.Sprintf("solicitud_%d_%s.pdf", solicitud.ID, tipo.Codigo))

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Constancia de Justificación de Inasistencia"))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	lineas := []string{
		fmt.Sprintf("Agente: %s (Legajo %d)", agente.NombreCompleto(), agente.Legajo),
		fmt.Sprintf("Tipo de licencia: %s (%s)", tipo.Descripcion, tipo.Codigo),
		fmt.Sprintf("Texto para el reloj: %s", tipo.TextoParaReloj),
		fmt.Sprintf("Fecha de inicio: %s", solicitud.FechaInicio.Format("02/01/2006")),
		fmt.Sprintf("Días: %d", solicitud.Dias),
		fmt.Sprintf("Estado: %s", solicitud.Estado),
		fmt.Sprintf("Fecha de aprobación: %s", time.Now().Format("02/01/2006 15:04")),
	}
	for _, linea := range lineas {
		pdf.Cell(0, 8, tr(linea))
		pdf.Ln(8)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, tr("Documento generado automáticamente por el sistema de justificaciones."))

	if err := pdf.OutputFileAndClose(ruta); err != nil {
		return "", fmt.Errorf("escribir pdf: %w", err)
	}
	g.logger.Info("pdf generado", zap.String("ruta", ruta))
	return ruta, nil
}
