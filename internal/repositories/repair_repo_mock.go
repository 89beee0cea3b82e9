package repositories

import (
	"fmt"
	"sync"
	"time"

	"nictech/internal/models"

	"github.com/google/uuid"
)

// MockRepairRepository is an in-memory implementation of RepairRepository.
type MockRepairRepository struct {
	repairs map[string]models.Repair
	mu      sync.RWMutex
	nextLog uint
}

// NewMockRepairRepository creates a new instance of MockRepairRepository.
func NewMockRepairRepository() *MockRepairRepository {
	return &MockRepairRepository{
		repairs: make(map[string]models.Repair),
	}
}

// GetAll returns all repairs.
func (r *MockRepairRepository) GetAll() ([]models.Repair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repairList := make([]models.Repair, 0, len(r.repairs))
	for _, repair := range r.repairs {
		repairList = append(repairList, repair)
	}
	return repairList, nil
}

// GetByID returns a repair by its ID.
func (r *MockRepairRepository) GetByID(id string) (*models.Repair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repair, ok := r.repairs[id]
	if !ok {
		return nil, fmt.Errorf("repair with ID %s not found", id)
	}
	return &repair, nil
}

// FindByCodeOrDNI returns a repair matching the tracking code or client DNI.
func (r *MockRepairRepository) FindByCodeOrDNI(query string) (*models.Repair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, repair := range r.repairs {
		if repair.TrackingCode == query || repair.ClientDNI == query {
			result := repair
			return &result, nil
		}
	}
	return nil, fmt.Errorf("no repair found for %s", query)
}

// Create adds a new repair.
func (r *MockRepairRepository) Create(repair *models.Repair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if repair.ID == "" {
		repair.ID = uuid.New().String()
	}
	repair.CreatedAt = time.Now()
	repair.UpdatedAt = time.Now()
	r.repairs[repair.ID] = *repair
	return nil
}

// UpdateStatus sets the status and appends a log entry.
func (r *MockRepairRepository) UpdateStatus(id string, status string, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repair, ok := r.repairs[id]
	if !ok {
		return fmt.Errorf("repair with ID %s not found for status update", id)
	}
	r.nextLog++
	repair.Status = status
	repair.Logs = append(repair.Logs, models.RepairLog{
		ID:        r.nextLog,
		RepairID:  id,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now(),
	})
	repair.UpdatedAt = time.Now()
	r.repairs[id] = repair
	return nil
}
