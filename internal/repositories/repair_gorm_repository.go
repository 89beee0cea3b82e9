package repositories

import (
	"fmt"

	"nictech/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRepairRepository is a GORM implementation of RepairRepository.
type GORMRepairRepository struct {
	db *gorm.DB
}

// NewGORMRepairRepository creates a new instance of GORMRepairRepository.
func NewGORMRepairRepository(db *gorm.DB) *GORMRepairRepository {
	return &GORMRepairRepository{
		db: db,
	}
}

// GetAll retrieves all repairs with their status logs.
func (r *GORMRepairRepository) GetAll() ([]models.Repair, error) {
	var repairs []models.Repair
	if err := r.db.Preload("Logs").Order("created_at DESC").Find(&repairs).Error; err != nil {
		return nil, fmt.Errorf("failed to get all repairs: %w", err)
	}
	return repairs, nil
}

// GetByID retrieves a single repair by its ID.
func (r *GORMRepairRepository) GetByID(id string) (*models.Repair, error) {
	var repair models.Repair
	if err := r.db.Preload("Logs").First(&repair, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("repair with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get repair by ID %s: %w", id, err)
	}
	return &repair, nil
}

// FindByCodeOrDNI retrieves a repair by tracking code or client DNI.
func (r *GORMRepairRepository) FindByCodeOrDNI(query string) (*models.Repair, error) {
	var repair models.Repair
	err := r.db.Preload("Logs").
		Where("tracking_code = ? OR client_dni = ?", query, query).
		First(&repair).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no repair found for %s", query)
		}
		return nil, fmt.Errorf("failed to look up repair for %s: %w", query, err)
	}
	return &repair, nil
}

// Create creates a new repair along with its initial log entry.
func (r *GORMRepairRepository) Create(repair *models.Repair) error {
	if repair.ID == "" {
		repair.ID = uuid.New().String()
	}
	if err := r.db.Create(repair).Error; err != nil {
		return fmt.Errorf("failed to create repair: %w", err)
	}
	return nil
}

// UpdateStatus sets the repair status and appends a log entry in one
// transaction so the timeline never disagrees with the current status.
func (r *GORMRepairRepository) UpdateStatus(id string, status string, note string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Repair{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to update repair status for %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("repair with ID %s not found for status update", id)
		}
		logEntry := models.RepairLog{RepairID: id, Status: status, Note: note}
		if err := tx.Create(&logEntry).Error; err != nil {
			return fmt.Errorf("failed to append repair log for %s: %w", id, err)
		}
		return nil
	})
}
