package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feermza/sistema-justificaciones/internal/api/dto"
	"github.com/feermza/sistema-justificaciones/internal/auth"
	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/export"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	"github.com/feermza/sistema-justificaciones/internal/service"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

const formatoFecha = "2006-01-02"

// SolicitudesHandler manages leave-request endpoints.
type SolicitudesHandler struct {
	service *service.SolicitudService
}

// NewSolicitudesHandler constructs handler.
func NewSolicitudesHandler(solicitudService *service.SolicitudService) *SolicitudesHandler {
	return &SolicitudesHandler{service: solicitudService}
}

// CreateSolicitud POST /solicitudes.
func (h *SolicitudesHandler) CreateSolicitud(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	var req dto.CreateSolicitudRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.TipoID <= 0 || req.FechaInicio == "" || req.Dias <= 0 {
		return apperrors.NewValidationError("tipo_id, fecha_inicio y dias son requeridos", nil)
	}
	fecha, err := time.Parse(formatoFecha, req.FechaInicio)
	if err != nil {
		return apperrors.NewValidationError("fecha_inicio inválida",
			map[string]any{"fecha_inicio": req.FechaInicio})
	}

	solicitud, err := h.service.Crear(c.Context(), principal, service.SolicitudCreateInput{
		TipoID:             req.TipoID,
		FechaInicio:        fecha,
		Dias:               req.Dias,
		JefeSeleccionadoID: req.JefeSeleccionadoID,
		Motivo:             req.Motivo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": solicitudResponse(solicitud)})
}

// ListSolicitudes GET /solicitudes.
//
// Three views share the endpoint: the default lists the caller's own
// requests; ?jefe=<id> lists the pending notices awaiting that supervisor;
// ?modo_rrhh=true (HR only) lists everything past supervisor validation.
// ?agente=<id> lets HR browse another agent's requests.
func (h *SolicitudesHandler) ListSolicitudes(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}

	filter := repository.SolicitudFilter{}
	switch {
	case c.Query("jefe") != "":
		jefeID, err := strconv.ParseInt(c.Query("jefe"), 10, 64)
		if err != nil {
			return apperrors.NewValidationError("jefe inválido", map[string]any{"jefe": c.Query("jefe")})
		}
		if jefeID != principal.ID && !principal.EsRRHH {
			return apperrors.NewForbidden("solo puede consultar su propia bandeja de validación")
		}
		filter.JefeID = &jefeID
		filter.Estados = []domain.EstadoSolicitud{domain.EstadoPendienteValidacion}
	case c.QueryBool("modo_rrhh"):
		if !principal.EsRRHH {
			return apperrors.NewForbidden("modo_rrhh requiere personal de RRHH")
		}
		filter.Estados = []domain.EstadoSolicitud{
			domain.EstadoAvisoConfirmado,
			domain.EstadoAvisoNegado,
			domain.EstadoAprobado,
			domain.EstadoRechazadoRRHH,
			domain.EstadoImpactado,
		}
	case c.Query("agente") != "":
		agenteID, err := strconv.ParseInt(c.Query("agente"), 10, 64)
		if err != nil {
			return apperrors.NewValidationError("agente inválido", map[string]any{"agente": c.Query("agente")})
		}
		if agenteID != principal.ID && !principal.EsRRHH {
			return apperrors.NewForbidden("solo puede consultar sus propias solicitudes")
		}
		filter.AgenteID = &agenteID
	default:
		filter.AgenteID = &principal.ID
	}

	if desde := parseFechaQuery(c.Query("desde")); desde != nil {
		filter.FechaDesde = desde
	}
	if hasta := parseFechaQuery(c.Query("hasta")); hasta != nil {
		filter.FechaHasta = hasta
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	solicitudes, err := h.service.Listar(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.SolicitudResponse, 0, len(solicitudes))
	for i := range solicitudes {
		items = append(items, solicitudResponse(&solicitudes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSolicitud GET /solicitudes/:id.
func (h *SolicitudesHandler) GetSolicitud(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	solicitud, err := h.service.Obtener(c.Context(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": solicitudResponse(solicitud)})
}

// UpdateSolicitud PATCH /solicitudes/:id.
func (h *SolicitudesHandler) UpdateSolicitud(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSolicitudRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	input := service.SolicitudUpdateInput{
		TipoID:        req.TipoID,
		Dias:          req.Dias,
		Motivo:        req.Motivo,
		MotivoRechazo: req.MotivoRechazo,
		Estado:        req.Estado,
	}
	if req.FechaInicio != nil {
		fecha, err := time.Parse(formatoFecha, *req.FechaInicio)
		if err != nil {
			return apperrors.NewValidationError("fecha_inicio inválida",
				map[string]any{"fecha_inicio": *req.FechaInicio})
		}
		input.FechaInicio = &fecha
	}

	solicitud, err := h.service.Actualizar(c.Context(), principal, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": solicitudResponse(solicitud)})
}

// DeleteSolicitud DELETE /solicitudes/:id.
func (h *SolicitudesHandler) DeleteSolicitud(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Eliminar(c.Context(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AdjuntarArchivo POST /solicitudes/:id/adjunto (multipart, field "archivo").
func (h *SolicitudesHandler) AdjuntarArchivo(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		return apperrors.NewValidationError("se requiere el archivo en el campo 'archivo'", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("no se pudo leer el archivo", nil)
	}
	defer file.Close()
	contenido, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	solicitud, err := h.service.AdjuntarArchivo(c.Context(), principal, id, fileHeader.Filename, contenido)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": solicitudResponse(solicitud)})
}

// ExportarCerradas GET /solicitudes/exportar (RRHH). Streams the CSV report
// of closed requests in the optional [desde, hasta] range.
func (h *SolicitudesHandler) ExportarCerradas(c *fiber.Ctx) error {
	desdeStr, hastaStr := c.Query("desde"), c.Query("hasta")
	desde := parseFechaQuery(desdeStr)
	hasta := parseFechaQuery(hastaStr)

	var buf bytes.Buffer
	if err := h.service.ExportarCerradas(c.Context(), &buf, desde, hasta); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		`attachment; filename="`+export.NombreArchivo(desdeStr, hastaStr)+`"`)
	return c.Send(buf.Bytes())
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id inválido", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parseFechaQuery(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(formatoFecha, val)
	if err != nil {
		return nil
	}
	return &t
}

func solicitudResponse(s *domain.Solicitud) dto.SolicitudResponse {
	return dto.SolicitudResponse{
		ID:                 s.ID,
		AgenteID:           s.AgenteID,
		TipoID:             s.TipoID,
		TipoCodigo:         s.TipoCodigo,
		FechaSolicitud:     s.FechaSolicitud,
		FechaInicio:        s.FechaInicio.Format(formatoFecha),
		Dias:               s.Dias,
		JefeSeleccionadoID: s.JefeSeleccionadoID,
		Motivo:             s.Motivo,
		ArchivoAdjunto:     s.ArchivoAdjunto,
		MotivoRechazo:      s.MotivoRechazo,
		Estado:             s.Estado,
		UpdatedAt:          s.UpdatedAt,
	}
}
