package handlers

import (
	"time"

	"certachain/internal/middleware"
	"certachain/internal/models"
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// VerifyRequest is the verification form.
type VerifyRequest struct {
	CertificateID string `json:"certificateId"`
}

// VerifierHandler handles verification requests and the verifier's history.
type VerifierHandler struct {
	service      *services.VerificationService
	authService  *services.AuthService
	chainTimeout time.Duration
}

// NewVerifierHandler creates a new VerifierHandler.
func NewVerifierHandler(service *services.VerificationService, authService *services.AuthService) *VerifierHandler {
	return &VerifierHandler{service: service, authService: authService}
}

// WithChainTimeout sets how long a verification waits for the chain.
func (h *VerifierHandler) WithChainTimeout(d time.Duration) *VerifierHandler {
	h.chainTimeout = d
	return h
}

// RegisterRoutes registers the verifier routes.
func (h *VerifierHandler) RegisterRoutes(router fiber.Router) {
	verifier := router.Group("/verifier", middleware.AuthRequired(h.authService), middleware.RoleRequired(models.RoleVerifier))
	verifier.Post("/verify", h.HandleVerify)
	verifier.Get("/history", h.HandleHistory)
}

// HandleVerify checks a certificate id against the chain. An unknown id is
// answered with 200 and valid=false.
func (h *VerifierHandler) HandleVerify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	ctx, cancel := chainContext(c, h.chainTimeout)
	defer cancel()
	outcome, err := h.service.Verify(ctx, req.CertificateID)
	if err != nil {
		return respondError(c, "Verification failed", err)
	}
	return c.JSON(outcome)
}

// HandleHistory returns the verifier's records, newest first, with counts.
func (h *VerifierHandler) HandleHistory(c *fiber.Ctx) error {
	history, err := h.service.History()
	if err != nil {
		return respondError(c, "Could not retrieve history", err)
	}
	summary, err := h.service.Summary()
	if err != nil {
		return respondError(c, "Could not retrieve history", err)
	}
	return c.JSON(fiber.Map{
		"records": history,
		"summary": summary,
	})
}
