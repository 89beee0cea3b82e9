package services

import (
	"nictech/internal/models"
	"nictech/internal/repositories"
)

// OrderService exposes the order records written by the webhook flow to the
// back office, for manual reconciliation of failed or missing deliveries.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByPaymentID retrieves a single order by the provider's payment id.
func (s *OrderService) GetOrderByPaymentID(paymentID string) (*models.Order, error) {
	return s.orderRepo.GetByPaymentID(paymentID)
}
