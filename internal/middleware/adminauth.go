package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth gates a route group behind the admin capability. The secret
// travels as a bearer token; verify is the treasury's secret check. On success
// the secret is stashed in locals so handlers can rebuild the capability.
func AdminAuth(verify func(secret string) error, localKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		secret := strings.TrimSpace(authz[len("Bearer "):])
		if err := verify(secret); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin credential")
		}
		c.Locals(localKey, secret)
		return c.Next()
	}
}
