package models

import "time"

// Vehicle belongs to exactly one user. The plate number is globally unique.
type Vehicle struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"index;not null" json:"user_id"`
	PlateNumber     string        `gorm:"unique;not null" json:"plate_number"`
	VehicleType     string        `gorm:"not null" json:"vehicle_type"`
	Size            string        `gorm:"not null" json:"size"`
	OtherAttributes string        `json:"other_attributes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	User            *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SlotRequests    []SlotRequest `gorm:"foreignKey:VehicleID" json:"slot_requests,omitempty"`

	// Derived from an approved slot request at read time, never stored.
	ApprovalStatus *string `gorm:"-" json:"approval_status"`
}

// DeriveApprovalStatus fills ApprovalStatus from the preloaded approved
// requests, if any.
func (v *Vehicle) DeriveApprovalStatus() {
	if len(v.SlotRequests) > 0 {
		status := v.SlotRequests[0].Status
		v.ApprovalStatus = &status
	}
}

// VehicleSummary is the vehicle projection embedded in slot request listings.
type VehicleSummary struct {
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
}
