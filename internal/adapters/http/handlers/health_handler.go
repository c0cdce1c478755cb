package handlers

import (
	"time"

	"asser-platform/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Health reports service liveness and uptime.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return response.Success(c, "ok", fiber.Map{
		"uptime": time.Since(h.startedAt).String(),
	})
}
