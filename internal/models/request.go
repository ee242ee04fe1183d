package models

import "time"

// Slot request statuses. Approved and rejected are terminal; no code path
// returns a processed request to pending.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// SlotRequest is a vehicle owner's petition for a parking assignment.
// SlotID and ApprovedAt are set only by the approval workflow.
type SlotRequest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	VehicleID  uint       `gorm:"index;not null" json:"vehicle_id"`
	Status     string     `gorm:"not null;default:pending" json:"status"`
	SlotID     *uint      `json:"slot_id,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Vehicle    *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// RequestListItem is a slot request joined with its vehicle summary for
// listing responses.
type RequestListItem struct {
	SlotRequest
	VehicleSummary VehicleSummary `json:"vehicle"`
}
