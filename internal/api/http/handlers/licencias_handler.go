package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/feermza/sistema-justificaciones/internal/api/dto"
	"github.com/feermza/sistema-justificaciones/internal/repository"
)

// LicenciasHandler serves the leave-type catalog.
type LicenciasHandler struct {
	tipos repository.TipoLicenciaRepository
}

// NewLicenciasHandler constructs handler.
func NewLicenciasHandler(tipos repository.TipoLicenciaRepository) *LicenciasHandler {
	return &LicenciasHandler{tipos: tipos}
}

// ListTipos GET /licencias.
func (h *LicenciasHandler) ListTipos(c *fiber.Ctx) error {
	tipos, err := h.tipos.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TipoLicenciaResponse, 0, len(tipos))
	for _, tipo := range tipos {
		items = append(items, dto.TipoLicenciaResponse{
			ID:             tipo.ID,
			Codigo:         tipo.Codigo,
			Descripcion:    tipo.Descripcion,
			TextoParaReloj: tipo.TextoParaReloj,
			RequiereAviso:  tipo.RequiereAviso,
			EsFranquicia:   tipo.EsFranquicia,
			LimiteMensual:  tipo.LimiteMensual,
			LimiteAnual:    tipo.LimiteAnual,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
