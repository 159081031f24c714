package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/feermza/sistema-justificaciones/internal/api/http/handlers"
	"github.com/feermza/sistema-justificaciones/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Agentes        *handlers.AgentesHandler
	Solicitudes    *handlers.SolicitudesHandler
	Licencias      *handlers.LicenciasHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	agentesPublico := api.Group("/agentes")
	agentesPublico.Post("/validar-identidad", cfg.Agentes.ValidarIdentidad)
	agentesPublico.Post("/activar-cuenta", cfg.Agentes.ActivarCuenta)
	agentesPublico.Post("/login", cfg.Agentes.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAutenticado())

	agentes := protected.Group("/agentes")
	agentes.Get("/me", cfg.Agentes.Me)
	agentes.Get("/:id/supervisores", cfg.Agentes.Supervisores)
	agentes.Get("/", auth.RequireRRHH(), cfg.Agentes.ListAgentes)
	agentes.Post("/", auth.RequireRRHH(), cfg.Agentes.CreateAgente)

	protected.Get("/licencias", cfg.Licencias.ListTipos)

	solicitudes := protected.Group("/solicitudes")
	solicitudes.Get("/exportar", auth.RequireRRHH(), cfg.Solicitudes.ExportarCerradas)
	solicitudes.Post("/", cfg.Solicitudes.CreateSolicitud)
	solicitudes.Get("/", cfg.Solicitudes.ListSolicitudes)
	solicitudes.Get("/:id", cfg.Solicitudes.GetSolicitud)
	solicitudes.Patch("/:id", cfg.Solicitudes.UpdateSolicitud)
	solicitudes.Delete("/:id", cfg.Solicitudes.DeleteSolicitud)
	solicitudes.Post("/:id/adjunto", cfg.Solicitudes.AdjuntarArchivo)
}
