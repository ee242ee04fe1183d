package models

import "time"

// Parking slot statuses.
const (
	SlotAvailable   = "available"
	SlotUnavailable = "unavailable"
)

// ParkingSlot is a unit of inventory. Status flips to unavailable when the
// approval workflow assigns the slot to a request; admin CRUD is the only
// other mutation path.
type ParkingSlot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SlotNumber  string    `gorm:"unique;not null" json:"slot_number"`
	Size        string    `gorm:"not null" json:"size"`
	VehicleType string    `gorm:"not null" json:"vehicle_type"`
	Location    string    `json:"location"`
	Status      string    `gorm:"not null;default:available" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
