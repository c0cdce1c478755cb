package middleware

import (
	"strings"

	"asser-platform/internal/config"
	"asser-platform/internal/pkg/gateway"
	"asser-platform/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuth authenticates the chat gateway calling the event API.
func GatewayAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Gateway token required")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := gateway.ValidateToken(token, cfg.GatewaySecret)
		if err != nil {
			if err == gateway.ErrTokenExpired {
				return response.Unauthorized(c, "Gateway token expired")
			}
			return response.Unauthorized(c, "Invalid gateway token")
		}

		c.Locals("gatewayID", claims.GatewayID)
		return c.Next()
	}
}
