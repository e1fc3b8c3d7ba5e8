package main

import (
	"fmt"
	"time"

	"certachain/internal/chain"
	"certachain/internal/config"
	"certachain/internal/handlers"
	"certachain/internal/repositories"
	"certachain/internal/services"
	"certachain/internal/session"
	"certachain/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// NewApp wires repositories, services and handlers over store and returns
// the Fiber app with every route registered. publisher may be nil.
func NewApp(cfg *config.Config, store storage.Store, publisher services.EventPublisher) (*fiber.App, *services.AuthService, error) {
	// --- Session and Repositories ---
	sess := session.New(store)
	if err := sess.Hydrate(); err != nil {
		return nil, nil, err
	}
	userRepo, err := repositories.NewKVUserRepository(store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load users: %w", err)
	}
	certRepo, err := repositories.NewKVCertificateRepository(store, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load certificates: %w", err)
	}
	ledger, err := repositories.NewKVVerificationRepository(store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load verification history: %w", err)
	}

	// --- Services ---
	hasher, err := services.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return nil, nil, err
	}
	chainSvc := chain.NewService(cfg.Chain)
	authService := services.NewAuthService(userRepo, sess, hasher, cfg.JWTSecret)
	certificateService := services.NewCertificateService(certRepo, chainSvc, sess, publisher)
	holderService := services.NewHolderService(certRepo, sess)
	verificationService := services.NewVerificationService(certRepo, ledger, chainSvc, sess, publisher)
	preferenceService := services.NewPreferenceService(store)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "certachain"})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if _, err := store.Keys(); err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		events := "disabled"
		if publisher != nil {
			events = "enabled"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"storage":  cfg.DatabaseDriver,
			"rabbitMQ": events,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCertificateHandler(certificateService, authService).WithChainTimeout(cfg.ChainTimeout).RegisterRoutes(apiV1)
	handlers.NewHolderHandler(holderService, authService).RegisterRoutes(apiV1)
	handlers.NewVerifierHandler(verificationService, authService).WithChainTimeout(cfg.ChainTimeout).RegisterRoutes(apiV1)
	handlers.NewPreferenceHandler(preferenceService).RegisterRoutes(apiV1)

	return app, authService, nil
}
