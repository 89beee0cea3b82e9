package handlers

import (
	"errors"
	"log"

	"nictech/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives payment status notifications from the payment
// provider. Deliveries are unauthenticated, possibly duplicated and out of
// order; anything this endpoint chooses not to act on must still get a 200
// or the provider marks the endpoint unhealthy.
type WebhookHandler struct {
	service *services.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		service: service,
	}
}

// RegisterRoutes registers the webhook route with the Fiber app.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments/webhook", h.HandleNotification)
}

// HandleNotification processes one webhook delivery. The provider sends the
// payment id either as query parameters (topic|type, id|data.id) or as a
// JSON body ({type, data:{id}}).
func (h *WebhookHandler) HandleNotification(c *fiber.Ctx) error {
	topic := c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}
	id := c.Query("id")
	if id == "" {
		id = c.Query("data.id")
	}

	notification := services.ParseNotification(topic, id, c.Body())
	log.Printf("Received webhook: topic=%s, id=%s", notification.Topic, notification.PaymentID)

	processed, err := h.service.ProcessNotification(notification)
	if err != nil {
		log.Printf("Webhook processing failed for payment %s: %v", notification.PaymentID, err)
		var persistErr *services.PersistenceError
		if errors.As(err, &persistErr) {
			// Never acknowledge success on a lost order record; the
			// provider will redeliver.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": persistErr.Error(),
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if !processed {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
