package repositories

import (
	"nictech/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// keyed by the payment provider's payment id.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByPaymentID(paymentID string) (*models.Order, error)
	// Upsert inserts the order if its payment id is unseen, otherwise
	// updates the existing row in one atomic store operation. This is the
	// sole idempotency guarantee against duplicate webhook deliveries.
	Upsert(order *models.Order) error
}
