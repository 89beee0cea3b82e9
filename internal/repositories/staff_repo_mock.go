package repositories

import (
	"fmt"
	"sync"

	"nictech/internal/models"

	"github.com/google/uuid"
)

// MockStaffRepository is an in-memory implementation of StaffRepository.
type MockStaffRepository struct {
	accounts map[string]models.StaffAccount // keyed by username
	mu       sync.RWMutex
}

// NewMockStaffRepository creates a new instance of MockStaffRepository.
func NewMockStaffRepository() *MockStaffRepository {
	return &MockStaffRepository{
		accounts: make(map[string]models.StaffAccount),
	}
}

// Create stores a new staff account, enforcing the unique username and
// email the database indexes would.
func (r *MockStaffRepository) Create(account *models.StaffAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Username]; ok {
		return fmt.Errorf("staff account with username %s already exists", account.Username)
	}
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("staff account with email %s already exists", account.Email)
		}
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	r.accounts[account.Username] = *account
	return nil
}

// GetByUsername returns a staff account by username.
func (r *MockStaffRepository) GetByUsername(username string) (*models.StaffAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[username]
	if !ok {
		return nil, fmt.Errorf("staff account with username %s not found", username)
	}
	return &account, nil
}

// GetByEmail returns a staff account by email.
func (r *MockStaffRepository) GetByEmail(email string) (*models.StaffAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, fmt.Errorf("staff account with email %s not found", email)
}

// CountAdmins returns the number of accounts holding the admin role.
func (r *MockStaffRepository) CountAdmins() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, account := range r.accounts {
		if account.Role == models.RoleAdmin {
			count++
		}
	}
	return count, nil
}
