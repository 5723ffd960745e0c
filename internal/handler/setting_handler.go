package handler

import (
	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SettingHandler struct {
	service service.SettingService
}

func NewSettingHandler(s service.SettingService) *SettingHandler {
	return &SettingHandler{service: s}
}

// GetPublicSettings is read by the ordering SPA
// GET /api/v1/settings/public
func (h *SettingHandler) GetPublicSettings(c *fiber.Ctx) error {
	settings, err := h.service.GetAll(true)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch settings"})
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}

func (h *SettingHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.service.GetAll(false)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch settings"})
	}
	return c.JSON(settings)
}

// UpdateSettings upserts a flat {key: value} body
// PUT /api/v1/settings
func (h *SettingHandler) UpdateSettings(c *fiber.Ctx) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	settings, err := h.service.Update(req, getUserID(c))
	if err != nil {
		if service.IsValidationError(err) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update settings"})
	}
	return c.JSON(fiber.Map{"message": "Settings updated", "data": settings})
}
