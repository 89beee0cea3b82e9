package models

import (
	"time"

	"gorm.io/gorm"
)

// Repair statuses, in the order a device normally moves through the shop.
const (
	RepairStatusReceived     = "received"
	RepairStatusDiagnosing   = "diagnosing"
	RepairStatusRepairing    = "repairing"
	RepairStatusWaitingParts = "waiting_parts"
	RepairStatusReady        = "ready"
	RepairStatusDelivered    = "delivered"
)

// ValidRepairStatuses is the set of statuses accepted on update.
var ValidRepairStatuses = map[string]bool{
	RepairStatusReceived:     true,
	RepairStatusDiagnosing:   true,
	RepairStatusRepairing:    true,
	RepairStatusWaitingParts: true,
	RepairStatusReady:        true,
	RepairStatusDelivered:    true,
}

// Repair represents a device repair order tracked by customers via a
// short tracking code or their DNI.
type Repair struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	TrackingCode string      `json:"tracking_code" gorm:"uniqueIndex;type:varchar(16)"`
	ClientDNI    string      `json:"client_dni" gorm:"index;type:varchar(20)" validate:"required,min=6,max=20"`
	ClientName   string      `json:"client_name" validate:"omitempty,max=100"`
	DeviceBrand  string      `json:"device_brand" validate:"omitempty,max=100"`
	DeviceModel  string      `json:"device_model" validate:"required,max=100"`
	Status       string      `json:"status" gorm:"type:varchar(32)"`
	Notes        string      `json:"notes" validate:"omitempty,max=1000"`
	Logs         []RepairLog `json:"logs,omitempty" gorm:"foreignKey:RepairID;constraint:OnDelete:CASCADE"`
	gorm.Model
}

// RepairLog is one entry in a repair's status timeline.
type RepairLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RepairID  string    `json:"repair_id" gorm:"index;type:varchar(36)"`
	Status    string    `json:"status" gorm:"type:varchar(32)"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
