package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/service"
)

// IdentityKey is the fiber.Locals key holding the caller's models.Identity.
const IdentityKey = "identity"

type AuthMiddleware struct {
	s service.AuthService
}

func NewAuthMiddleware(service service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{s: service}
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware requires a valid access token and stores the resolved identity.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.s.ResolveIdentity(bearerToken(c))
		if err != nil {
			slog.Info("token rejected", "path", c.Path(), "error", err)
			return err
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// RequireRole admits only identities holding one of roles. It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := c.Locals(IdentityKey).(models.Identity)
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("Access denied. Insufficient permissions.")
	}
}
