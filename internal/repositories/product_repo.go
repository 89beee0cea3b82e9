package repositories

import (
	"nictech/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// DecrementStock atomically lowers a product's stock by quantity,
	// flooring at zero. The decrement must be a single store-side
	// operation so that concurrent webhook deliveries cannot interleave
	// a read with a stale write.
	DecrementStock(id string, quantity int) error
}
