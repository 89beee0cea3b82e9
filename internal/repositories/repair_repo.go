package repositories

import (
	"nictech/internal/models"
)

// RepairRepository defines the interface for repair order data access.
type RepairRepository interface {
	GetAll() ([]models.Repair, error)
	GetByID(id string) (*models.Repair, error)
	// FindByCodeOrDNI looks a repair up by exact tracking code or by the
	// client's DNI, whichever matches. Used by the public tracking page.
	FindByCodeOrDNI(query string) (*models.Repair, error)
	Create(repair *models.Repair) error
	UpdateStatus(id string, status string, note string) error
}
