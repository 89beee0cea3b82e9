package models

import "gorm.io/gorm"

// Product represents a product in the store catalog.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string           `json:"name" validate:"required,min=3,max=100"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	Price       float64          `json:"price" validate:"required,gt=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
	ImageURL    string           `json:"image_url" validate:"omitempty,url"`
	Category    string           `json:"category" validate:"omitempty,max=100"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	gorm.Model                   // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductVariant represents a case/color variant of a product.
type ProductVariant struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID string `json:"product_id" gorm:"index;type:varchar(36)"`
	Label     string `json:"label" validate:"required,max=100"`
	Stock     int    `json:"stock" validate:"gte=0"`
}
