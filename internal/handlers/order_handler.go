package handlers

import (
	"fmt"
	"log"

	"nictech/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler exposes the order records written by the payment webhook to
// the back office.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes, expected to be mounted behind
// the auth middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:payment_id", h.HandleGetOrderByPaymentID)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByPaymentID retrieves a single order by payment id.
func (h *OrderHandler) HandleGetOrderByPaymentID(c *fiber.Ctx) error {
	paymentID := c.Params("payment_id")
	order, err := h.service.GetOrderByPaymentID(paymentID)
	if err != nil {
		log.Printf("Error getting order by payment ID %s: %v", paymentID, err)
		if err.Error() == fmt.Sprintf("order with payment ID %s not found", paymentID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with payment ID %s not found", paymentID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
