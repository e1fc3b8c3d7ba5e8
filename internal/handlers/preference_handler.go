package handlers

import (
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PreferenceHandler exposes the display preferences.
type PreferenceHandler struct {
	service *services.PreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(service *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// RegisterRoutes registers the preference routes.
func (h *PreferenceHandler) RegisterRoutes(router fiber.Router) {
	prefs := router.Group("/preferences")
	prefs.Get("/", h.HandleGet)
	prefs.Post("/dark-mode/toggle", h.HandleToggleDarkMode)
}

func (h *PreferenceHandler) HandleGet(c *fiber.Ctx) error {
	dark, err := h.service.DarkMode()
	if err != nil {
		return respondError(c, "Could not read preferences", err)
	}
	return c.JSON(fiber.Map{"isDarkMode": dark})
}

func (h *PreferenceHandler) HandleToggleDarkMode(c *fiber.Ctx) error {
	dark, err := h.service.ToggleDarkMode()
	if err != nil {
		return respondError(c, "Could not update preferences", err)
	}
	return c.JSON(fiber.Map{"isDarkMode": dark})
}
