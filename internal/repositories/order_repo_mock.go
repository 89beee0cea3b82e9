package repositories

import (
	"fmt"
	"sync"
	"time"

	"nictech/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByPaymentID returns an order by the provider's payment id.
func (r *MockOrderRepository) GetByPaymentID(paymentID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[paymentID]
	if !ok {
		return nil, fmt.Errorf("order with payment ID %s not found", paymentID)
	}
	return &order, nil
}

// Upsert inserts or replaces the order keyed on payment id.
func (r *MockOrderRepository) Upsert(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.PaymentID == "" {
		return fmt.Errorf("order payment ID is required for upsert")
	}
	if existing, ok := r.orders[order.PaymentID]; ok {
		order.CreatedAt = existing.CreatedAt
	} else {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()
	r.orders[order.PaymentID] = *order
	return nil
}
