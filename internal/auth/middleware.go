package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer session tokens and loads the agent.
type AuthMiddleware struct {
	tokens  *TokenManager
	agentes repository.AgenteRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, agentes repository.AgenteRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, agentes: agentes}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1], PropositoSesion)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	agente, err := m.agentes.GetByID(c.Context(), claims.AgenteID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("agente no encontrado")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, agente)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated agent.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Agente, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	agente, ok := val.(*domain.Agente)
	return agente, ok
}
