package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	mongo *persistence.Mongo
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(mongo *persistence.Mongo, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. Fails when a backing store is unreachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"mongo": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := h.mongo.Ping(c.Context()); err != nil {
		checks["mongo"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	} else {
		checks["redis"] = "disabled"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": checks,
	})
}
