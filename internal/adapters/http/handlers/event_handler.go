package handlers

import (
	"asser-platform/internal/core/services"
	"asser-platform/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles inbound chat events
type EventHandler struct {
	engine *services.Engine
}

// NewEventHandler creates a new event handler
func NewEventHandler(engine *services.Engine) *EventHandler {
	return &EventHandler{engine: engine}
}

// HandleEvent accepts one chat event from the gateway and returns the
// replies to deliver back to the actor.
func (h *EventHandler) HandleEvent(c *fiber.Ctx) error {
	var ev services.Event
	if err := c.BodyParser(&ev); err != nil {
		return response.BadRequest(c, "Invalid event payload")
	}
	if ev.ActorID == "" {
		return response.BadRequest(c, "actor_id is required")
	}

	replies := h.engine.Handle(ev)
	return response.Success(c, "ok", fiber.Map{"replies": replies})
}
