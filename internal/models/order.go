package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OrderItem is a snapshot of one purchased line item at payment time.
type OrderItem struct {
	ProductID string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

// OrderItems is stored as a JSON column.
type OrderItems []OrderItem

// Value implements driver.Valuer so GORM can persist the item snapshot.
func (items OrderItems) Value() (driver.Value, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (items *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*items = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for order items", value)
	}
	return json.Unmarshal(b, items)
}

// OrderPayer is a snapshot of the payer reported by the payment provider.
type OrderPayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Value implements driver.Valuer.
func (p OrderPayer) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payer: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *OrderPayer) Scan(value interface{}) error {
	if value == nil {
		*p = OrderPayer{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for order payer", value)
	}
	return json.Unmarshal(b, p)
}

// Order is a durable record of a payment attempt, keyed by the payment
// provider's payment id. Webhook deliveries for the same payment update the
// same row (upsert on payment_id), which is what makes duplicate deliveries
// safe to process.
type Order struct {
	PaymentID string     `json:"payment_id" gorm:"primaryKey;type:varchar(64)"`
	Status    string     `json:"status" gorm:"index;type:varchar(32)"` // e.g. "pending", "approved", "rejected"
	Total     float64    `json:"total"`
	Items     OrderItems `json:"items" gorm:"type:text"`
	Payer     OrderPayer `json:"payer" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OrderStatusApproved is the provider status that triggers stock
// reconciliation and fulfillment events.
const OrderStatusApproved = "approved"
