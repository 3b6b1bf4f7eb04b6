package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/boyw5785/gift-coin/internal/middleware"
	"github.com/boyw5785/gift-coin/internal/token"
)

// RegisterTokenRoutes wires the treasury endpoints. Supply-changing routes are
// rate limited per manager; manager-set edits sit behind the admin capability.
func RegisterTokenRoutes(r fiber.Router, h *token.Handler, svc *token.Service, d Deps) {
	r.Get("/token", h.Metadata)
	r.Get("/supply", h.Supply)
	r.Get("/balances/:account", h.Balance)
	r.Get("/managers/:id", h.IsAuthorized)

	r.Post("/transfer", h.Transfer)
	r.Post("/split", h.Split)
	r.Post("/join", h.Join)

	rateLimit := middleware.MintRateLimit(d.Cache, d.Cfg.MintRateLimit)
	r.Post("/mint", rateLimit, h.Mint)
	r.Post("/burn", rateLimit, h.Burn)
	r.Post("/balances/:account/adjust", rateLimit, h.Adjust)

	adminAuth := middleware.AdminAuth(svc.VerifyAdminSecret, token.AdminSecretLocal)
	r.Post("/managers", adminAuth, h.AddManager)
	r.Delete("/managers/:id", adminAuth, h.RemoveManager)
}
