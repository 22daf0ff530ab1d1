package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_atm/internal/session"
)

// RegisterSessionRoutes wires login/logout and the authenticated account
// endpoints. idempotency may be nil.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler, auth, idempotency fiber.Handler) {
	r.Post("/session", h.Login)
	r.Delete("/session", auth, h.Logout)

	acct := r.Group("/account", auth)
	acct.Get("", h.Account)
	if idempotency != nil {
		acct.Post("/deposit", idempotency, h.Deposit)
		acct.Post("/withdraw", idempotency, h.Withdraw)
	} else {
		acct.Post("/deposit", h.Deposit)
		acct.Post("/withdraw", h.Withdraw)
	}
}
