package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_atm/internal/account"
	"github.com/congo-pay/congo_atm/internal/logging"
	"github.com/congo-pay/congo_atm/internal/session"
	"github.com/congo-pay/congo_atm/internal/storage"
)

func TestSessionAuth(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()
	accounts, err := account.NewService(ctx, account.NewRepository(storage.NewMemory(), "", logger), nil, logger)
	if err != nil {
		t.Fatalf("account service: %v", err)
	}
	manager := session.NewManager(accounts, session.NewMemoryRepository(), logger)
	token, _, err := manager.Open(ctx, "admin", "1234")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	app := fiber.New()
	app.Get("/whoami", SessionAuth(manager), func(c *fiber.Ctx) error {
		s, _ := session.FromLocals(c)
		return c.SendString(s.Username())
	})

	cases := []struct {
		name   string
		authz  string
		status int
		body   string
	}{
		{name: "missing", authz: "", status: fiber.StatusUnauthorized},
		{name: "unknown", authz: "Bearer nope", status: fiber.StatusUnauthorized},
		{name: "valid", authz: "Bearer " + token, status: fiber.StatusOK, body: "admin"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
			if tc.authz != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.authz)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.StatusCode)
			}
			if tc.body != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tc.body {
					t.Fatalf("expected %q got %q", tc.body, body)
				}
			}
		})
	}
}
