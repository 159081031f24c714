package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// RequireAutenticado ensures an agent principal is loaded.
func RequireAutenticado() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("se requiere autenticación")
		}
		return c.Next()
	}
}

// RequireRRHH restricts the route to HR staff.
func RequireRRHH() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agente, ok := PrincipalFromContext(c)
		if !ok || !agente.EsRRHH {
			return apperrors.NewForbidden("se requiere personal de RRHH")
		}
		return c.Next()
	}
}

// RequireAutoridad restricts the route to agents with an authority rank.
func RequireAutoridad() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agente, ok := PrincipalFromContext(c)
		if !ok || (!agente.EsAutoridad() && !agente.EsRRHH) {
			return apperrors.NewForbidden("se requiere categoría de autoridad")
		}
		return c.Next()
	}
}
