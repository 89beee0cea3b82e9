package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"nictech/internal/models"
	"nictech/internal/repositories"
)

// trackingAlphabet omits I, O, 0 and 1 so codes read unambiguously when
// customers copy them from a printed receipt.
const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateTrackingCode produces a customer-facing repair code of the form
// XXXX-XXXX.
func GenerateTrackingCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(trackingAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate tracking code: %w", err)
		}
		b.WriteByte(trackingAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// RepairService handles business logic for device repair orders.
type RepairService struct {
	repairRepo repositories.RepairRepository
}

// NewRepairService creates a new RepairService.
func NewRepairService(repairRepo repositories.RepairRepository) *RepairService {
	return &RepairService{
		repairRepo: repairRepo,
	}
}

// GetAllRepairs retrieves all repairs.
func (s *RepairService) GetAllRepairs() ([]models.Repair, error) {
	return s.repairRepo.GetAll()
}

// TrackRepair looks a repair up by tracking code or client DNI for the
// public tracking page.
func (s *RepairService) TrackRepair(query string) (*models.Repair, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: tracking query is empty", ErrInvalidRequest)
	}
	return s.repairRepo.FindByCodeOrDNI(strings.ToUpper(query))
}

// CreateRepair registers a new repair order with a fresh tracking code and
// an initial "received" status.
func (s *RepairService) CreateRepair(repair *models.Repair) (*models.Repair, error) {
	code, err := GenerateTrackingCode()
	if err != nil {
		return nil, err
	}
	repair.TrackingCode = code
	repair.Status = models.RepairStatusReceived
	repair.Logs = []models.RepairLog{{Status: models.RepairStatusReceived, Note: "Device received"}}

	if err := s.repairRepo.Create(repair); err != nil {
		return nil, fmt.Errorf("failed to create repair: %w", err)
	}
	return repair, nil
}

// UpdateRepairStatus moves a repair to a new status and appends a log entry
// to its timeline. Unknown statuses are rejected before anything is written.
func (s *RepairService) UpdateRepairStatus(id, status, note string) error {
	if !models.ValidRepairStatuses[status] {
		return fmt.Errorf("%w: invalid repair status %q", ErrInvalidRequest, status)
	}
	if err := s.repairRepo.UpdateStatus(id, status, note); err != nil {
		return fmt.Errorf("failed to update repair status for %s: %w", id, err)
	}
	return nil
}
