package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"certachain/internal/chain"
	"certachain/internal/repositories"
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DefaultChainTimeout bounds how long a request waits for the chain.
const DefaultChainTimeout = 10 * time.Second

// chainContext derives the context a chain call runs under. A timeout of
// zero or less falls back to DefaultChainTimeout.
func chainContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultChainTimeout
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

// respondError maps a service error onto an HTTP status and a JSON body.
func respondError(c *fiber.Ctx, message string, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidToken):
		status = fiber.StatusUnauthorized
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, chain.ErrNetwork):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusRequestTimeout
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
