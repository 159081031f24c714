package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/feermza/sistema-justificaciones/internal/api/dto"
	"github.com/feermza/sistema-justificaciones/internal/auth"
	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	"github.com/feermza/sistema-justificaciones/internal/service"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// AgentesHandler manages activation, login and employee-record endpoints.
type AgentesHandler struct {
	activacion *service.ActivacionService
	agentes    *service.AgenteService
}

// NewAgentesHandler constructs handler.
func NewAgentesHandler(activacion *service.ActivacionService, agentes *service.AgenteService) *AgentesHandler {
	return &AgentesHandler{activacion: activacion, agentes: agentes}
}

// ValidarIdentidad POST /agentes/validar-identidad.
func (h *AgentesHandler) ValidarIdentidad(c *fiber.Ctx) error {
	var req dto.ValidarIdentidadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.Legajo <= 0 || strings.TrimSpace(req.DNI) == "" || strings.TrimSpace(req.FechaNacimiento) == "" {
		return apperrors.NewValidationError("legajo, dni y fecha_nacimiento son requeridos", nil)
	}

	resultado, err := h.activacion.ValidarIdentidad(c.Context(), req.Legajo, req.DNI, req.FechaNacimiento)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ValidarIdentidadResponse{
		Token:          resultado.Token,
		ExpiraEn:       resultado.ExpiraEn,
		TipoCredencial: string(resultado.TipoCredencial),
	}})
}

// ActivarCuenta POST /agentes/activar-cuenta.
func (h *AgentesHandler) ActivarCuenta(c *fiber.Ctx) error {
	var req dto.ActivarCuentaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.Token == "" || req.Clave == "" {
		return apperrors.NewValidationError("token y clave son requeridos", nil)
	}

	if err := h.activacion.ActivarCuenta(c.Context(), req.Token, req.Clave); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"activada": true}})
}

// Login POST /agentes/login.
func (h *AgentesHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.Legajo <= 0 || req.Clave == "" {
		return apperrors.NewValidationError("legajo y clave son requeridos", nil)
	}

	agente, token, expira, err := h.activacion.Login(c.Context(), req.Legajo, req.Clave)
	if err != nil {
		return err
	}
	perfil, err := h.agentes.PerfilDe(c.Context(), agente)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:    token,
		ExpiraEn: expira,
		Agente:   agenteSummary(perfil.Agente, perfil.EsJefe),
	}})
}

// Me GET /agentes/me.
func (h *AgentesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	perfil, err := h.agentes.PerfilDe(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agenteSummary(perfil.Agente, perfil.EsJefe)})
}

// CreateAgente POST /agentes (RRHH).
func (h *AgentesHandler) CreateAgente(c *fiber.Ctx) error {
	var req dto.CreateAgenteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	agente, err := h.agentes.Crear(c.Context(), service.AgenteCreateInput{
		Legajo:          req.Legajo,
		IDSistemaReloj:  req.IDSistemaReloj,
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		DNI:             req.DNI,
		Email:           req.Email,
		Area:            req.Area,
		Categoria:       req.Categoria,
		FechaNacimiento: req.FechaNacimiento,
		EsRRHH:          req.EsRRHH,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": agenteDetail(agente)})
}

// ListAgentes GET /agentes (RRHH).
func (h *AgentesHandler) ListAgentes(c *fiber.Ctx) error {
	filter := repository.AgenteFilter{}
	if legajoStr := c.Query("legajo"); legajoStr != "" {
		legajo, err := strconv.Atoi(legajoStr)
		if err != nil {
			return apperrors.NewValidationError("legajo inválido", map[string]any{"legajo": legajoStr})
		}
		filter.Legajo = &legajo
	}
	if dni := c.Query("dni"); dni != "" {
		filter.DNI = &dni
	}
	if area := c.Query("area"); area != "" {
		filter.Area = &area
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	agentes, err := h.agentes.Listar(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.AgenteDetailResponse, 0, len(agentes))
	for i := range agentes {
		items = append(items, agenteDetail(&agentes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Supervisores GET /agentes/:id/supervisores.
func (h *AgentesHandler) Supervisores(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agente requerido")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("id inválido", nil)
	}
	if principal.ID != id && !principal.EsRRHH {
		return apperrors.NewForbidden("solo puede consultar sus propios supervisores")
	}

	candidatos, err := h.agentes.Supervisores(c.Context(), id)
	if err != nil {
		return err
	}
	items := make([]dto.AgenteSummary, 0, len(candidatos))
	for i := range candidatos {
		items = append(items, agenteSummary(&candidatos[i], true))
	}
	return c.JSON(fiber.Map{"data": items})
}

func agenteSummary(agente *domain.Agente, esJefe bool) dto.AgenteSummary {
	return dto.AgenteSummary{
		ID:        agente.ID,
		Legajo:    agente.Legajo,
		Nombre:    agente.Nombre,
		Apellido:  agente.Apellido,
		Area:      agente.Area,
		Categoria: agente.Categoria,
		EsRRHH:    agente.EsRRHH,
		EsJefe:    esJefe,
		Activada:  agente.CuentaActivada(),
	}
}

func agenteDetail(agente *domain.Agente) dto.AgenteDetailResponse {
	var fechaNacimiento *string
	if agente.FechaNacimiento != nil {
		s := agente.FechaNacimiento.Format("2006-01-02")
		fechaNacimiento = &s
	}
	return dto.AgenteDetailResponse{
		ID:              agente.ID,
		Legajo:          agente.Legajo,
		IDSistemaReloj:  agente.IDSistemaReloj,
		Nombre:          agente.Nombre,
		Apellido:        agente.Apellido,
		DNI:             agente.DNI,
		Email:           agente.Email,
		Area:            agente.Area,
		Categoria:       agente.Categoria,
		FechaNacimiento: fechaNacimiento,
		EsRRHH:          agente.EsRRHH,
		Activada:        agente.CuentaActivada(),
		CreatedAt:       agente.CreatedAt,
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
