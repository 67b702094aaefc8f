package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/api/dto"
)

// Every response shares the same envelope:
// { success, data?, count?, pagination?, token?, message? }.

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondList(c *fiber.Ctx, count int64, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func respondPage(c *fiber.Ctx, count int64, pagination dto.Pagination, data any) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      count,
		"pagination": pagination,
		"data":       data,
	})
}

func respondToken(c *fiber.Ctx, status int, data any, token string, expiresAt time.Time) error {
	return c.Status(status).JSON(fiber.Map{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt.Unix(),
		"data":      data,
	})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}
