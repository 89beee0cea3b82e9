package repositories

import (
	"fmt"

	"nictech/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, most recently updated first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("updated_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByPaymentID retrieves a single order by the provider's payment id.
func (r *GORMOrderRepository) GetByPaymentID(paymentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "payment_id = ?", paymentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with payment ID %s not found", paymentID)
		}
		return nil, fmt.Errorf("failed to get order by payment ID %s: %w", paymentID, err)
	}
	return &order, nil
}

// Upsert inserts or updates the order in a single ON CONFLICT statement
// keyed on payment_id. Repeated webhook deliveries for the same payment
// therefore converge on one row, last write wins.
func (r *GORMOrderRepository) Upsert(order *models.Order) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "total", "items", "payer", "updated_at"}),
	}).Create(order).Error
	if err != nil {
		return fmt.Errorf("failed to upsert order %s: %w", order.PaymentID, err)
	}
	return nil
}
