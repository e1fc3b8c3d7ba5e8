package handlers

import (
	"certachain/internal/middleware"
	"certachain/internal/models"
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HolderHandler serves the holder's certificates.
type HolderHandler struct {
	service     *services.HolderService
	authService *services.AuthService
}

// NewHolderHandler creates a new HolderHandler.
func NewHolderHandler(service *services.HolderService, authService *services.AuthService) *HolderHandler {
	return &HolderHandler{service: service, authService: authService}
}

// RegisterRoutes registers the holder routes.
func (h *HolderHandler) RegisterRoutes(router fiber.Router) {
	holder := router.Group("/holder", middleware.AuthRequired(h.authService), middleware.RoleRequired(models.RoleHolder))
	holder.Get("/certificates", h.HandleMyCertificates)
}

// HandleMyCertificates lists the certificates held by the signed-in holder.
func (h *HolderHandler) HandleMyCertificates(c *fiber.Ctx) error {
	overview, err := h.service.MyCertificates()
	if err != nil {
		return respondError(c, "Could not retrieve certificates", err)
	}
	return c.JSON(overview)
}
