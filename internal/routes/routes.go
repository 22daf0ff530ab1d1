package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/congo_atm/internal/account"
	"github.com/congo-pay/congo_atm/internal/config"
	"github.com/congo-pay/congo_atm/internal/middleware"
	"github.com/congo-pay/congo_atm/internal/notification"
	"github.com/congo-pay/congo_atm/internal/session"
	"github.com/congo-pay/congo_atm/internal/storage"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	Storage storage.KV
	Cache   *redis.Client
	Logger  *slog.Logger
}

// Setup loads the account collection, then configures middlewares and routes.
func Setup(ctx context.Context, app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	repo := account.NewRepository(d.Storage, d.Cfg.StorageKey, d.Logger)
	accounts, err := account.NewService(ctx, repo, notification.NewLoggerNotifier(d.Logger), d.Logger)
	if err != nil {
		return err
	}

	var sessionRepo session.Repository
	if d.Cache != nil {
		sessionRepo = session.NewRedisRepository(d.Cache)
	} else {
		sessionRepo = session.NewMemoryRepository()
	}
	manager := session.NewManager(accounts, sessionRepo, d.Logger)
	handler := session.NewHandler(manager)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	auth := middleware.SessionAuth(manager)
	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterSessionRoutes(api, handler, auth, idempotency)

	return nil
}
