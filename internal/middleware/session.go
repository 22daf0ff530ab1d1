package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_atm/internal/session"
)

// SessionAuth resolves the bearer token into a logged in session and stores
// it in the request locals.
func SessionAuth(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		s, err := manager.Resume(c.UserContext(), token)
		if errors.Is(err, session.ErrSessionNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "unknown session")
		}
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		c.Locals(session.LocalsKey, s)
		c.Locals(session.TokenLocalsKey, token)
		return c.Next()
	}
}
