package handlers

import (
	"time"

	"certachain/internal/middleware"
	"certachain/internal/models"
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CertificateHandler handles HTTP requests for certificates.
type CertificateHandler struct {
	service      *services.CertificateService
	authService  *services.AuthService
	chainTimeout time.Duration
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(service *services.CertificateService, authService *services.AuthService) *CertificateHandler {
	return &CertificateHandler{
		service:     service,
		authService: authService,
	}
}

// WithChainTimeout sets how long issuing waits for the chain.
func (h *CertificateHandler) WithChainTimeout(d time.Duration) *CertificateHandler {
	h.chainTimeout = d
	return h
}

// RegisterRoutes registers the issuer routes and the public certificate lookup.
func (h *CertificateHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/certificates/:id", h.HandleGetCertificateByID)

	issuer := router.Group("/issuer", middleware.AuthRequired(h.authService), middleware.RoleRequired(models.RoleIssuer))
	issuer.Post("/certificates", h.HandleIssueCertificate)
	issuer.Get("/certificates", h.HandleListCertificates)
	issuer.Get("/dashboard", h.HandleDashboard)
}

// HandleIssueCertificate issues a certificate on the chain and stores it.
func (h *CertificateHandler) HandleIssueCertificate(c *fiber.Ctx) error {
	var req services.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	ctx, cancel := chainContext(c, h.chainTimeout)
	defer cancel()
	issued, err := h.service.Issue(ctx, req)
	if err != nil {
		return respondError(c, "Could not issue certificate", err)
	}
	return c.Status(fiber.StatusCreated).JSON(issued)
}

// HandleListCertificates lists the issuer's certificates, filtered by ?q=.
func (h *CertificateHandler) HandleListCertificates(c *fiber.Ctx) error {
	certs, err := h.service.ListIssued(c.Query("q"))
	if err != nil {
		return respondError(c, "Could not retrieve certificates", err)
	}
	return c.JSON(certs)
}

// HandleDashboard returns the issuer's statistics and recent certificates.
func (h *CertificateHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard()
	if err != nil {
		return respondError(c, "Could not load dashboard", err)
	}
	return c.JSON(dashboard)
}

// HandleGetCertificateByID retrieves a single certificate by its ID.
func (h *CertificateHandler) HandleGetCertificateByID(c *fiber.Ctx) error {
	id := c.Params("id")
	cert, err := h.service.GetCertificateByID(id)
	if err != nil {
		return respondError(c, "Certificate with ID "+id+" not found", err)
	}
	return c.JSON(cert)
}
