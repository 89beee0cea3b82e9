package repositories

import (
	"fmt"
	"nictech/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStaffRepository is a GORM implementation of StaffRepository.
type GORMStaffRepository struct {
	db *gorm.DB
}

// NewGORMStaffRepository creates a new instance of GORMStaffRepository.
func NewGORMStaffRepository(db *gorm.DB) *GORMStaffRepository {
	return &GORMStaffRepository{
		db: db,
	}
}

// Create creates a new staff account in the database.
func (r *GORMStaffRepository) Create(account *models.StaffAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}
	return nil
}

// GetByUsername retrieves a staff account by username from the database.
func (r *GORMStaffRepository) GetByUsername(username string) (*models.StaffAccount, error) {
	var account models.StaffAccount
	if err := r.db.First(&account, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("staff account with username %s not found", username)
		}
		return nil, fmt.Errorf("failed to get staff account by username %s: %w", username, err)
	}
	return &account, nil
}

// GetByEmail retrieves a staff account by email from the database.
func (r *GORMStaffRepository) GetByEmail(email string) (*models.StaffAccount, error) {
	var account models.StaffAccount
	if err := r.db.First(&account, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("staff account with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get staff account by email %s: %w", email, err)
	}
	return &account, nil
}

// CountAdmins returns the number of accounts holding the admin role.
func (r *GORMStaffRepository) CountAdmins() (int64, error) {
	var count int64
	if err := r.db.Model(&models.StaffAccount{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	return count, nil
}
