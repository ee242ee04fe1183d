package models

import "time"

// OtpCode is a one-time passcode emailed to a user during registration.
// A code is usable while it is unexpired and unconsumed; verification
// consumes it. Resending deletes all prior codes for the user.
type OtpCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Code      string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Consumed  bool      `gorm:"not null;default:false" json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the code can still verify a user at the given time.
func (o *OtpCode) Usable(now time.Time) bool {
	return !o.Consumed && now.Before(o.ExpiresAt)
}
