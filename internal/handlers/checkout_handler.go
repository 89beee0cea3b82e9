package handlers

import (
	"errors"
	"log"

	"nictech/internal/models"
	"nictech/internal/services"
	"nictech/pkg/mercadopago"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCreateCheckout)
}

// HandleCreateCheckout converts the submitted cart into a payment
// preference and returns the hosted checkout URLs. Failures are shown to
// the buyer immediately; checkout is never retried silently.
func (h *CheckoutHandler) HandleCreateCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	resp, err := h.service.CreateCheckout(req)
	if err != nil {
		log.Printf("Error creating checkout: %v", err)
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid cart",
				"error":   err.Error(),
			})
		}
		var apiErr *mercadopago.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Payment provider rejected the checkout",
				"error":   apiErr.Message,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create checkout",
			"error":   err.Error(),
		})
	}

	return c.JSON(resp)
}
