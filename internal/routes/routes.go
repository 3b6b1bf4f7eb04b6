package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/boyw5785/gift-coin/internal/config"
	"github.com/boyw5785/gift-coin/internal/ledger"
	"github.com/boyw5785/gift-coin/internal/middleware"
	"github.com/boyw5785/gift-coin/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. With a nil DB or
// cache (development only) the treasury runs on in-memory backends.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var store ledger.Store
	if d.DB != nil {
		pg := ledger.NewPostgresStore(d.DB)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
		store = pg
	} else {
		store = ledger.NewInMemory()
	}

	var vault token.Vault
	if d.Cache != nil {
		vault = token.NewRedisVault(d.Cache)
	} else {
		vault = token.NewMemoryVault()
	}

	svc, adminCap, err := token.NewService(store, vault, d.Cfg.AdminSecret)
	if err != nil {
		return err
	}
	if d.Cfg.AdminSecret == "" {
		// Development convenience: without a pinned secret the capability only
		// lives as long as the process.
		d.Logger.Warn("generated admin capability, set ADMIN_SECRET to pin it", "secret", adminCap.Secret())
	}

	valueSecret := d.Cfg.ValueSecret
	if valueSecret == "" {
		valueSecret = uuid.NewString()
		d.Logger.Warn("generated value signing secret, outstanding bearer values will not survive a restart")
	}

	handler := token.NewHandler(svc, []byte(valueSecret))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterTokenRoutes(api, handler, svc, d)

	return nil
}
