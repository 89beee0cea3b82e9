package models

import "gorm.io/gorm"

// Staff roles. Admins manage the catalog and other accounts; staff work
// repairs and read orders.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// StaffAccount is a back-office login for shop personnel. There is no
// customer-facing sign-up: accounts are created by an admin, and the first
// admin is seeded from configuration at startup.
type StaffAccount struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=8"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:staff" validate:"omitempty,oneof=admin staff"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
