package repositories

import "nictech/internal/models"

// StaffRepository defines the interface for staff account data access.
type StaffRepository interface {
	Create(account *models.StaffAccount) error
	GetByUsername(username string) (*models.StaffAccount, error)
	GetByEmail(email string) (*models.StaffAccount, error)
	CountAdmins() (int64, error)
}
