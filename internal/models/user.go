// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Accounts start unverified and are
// activated through the OTP email flow.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"unique;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	Role       string    `gorm:"not null;default:user" json:"role"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Vehicles   []Vehicle `gorm:"foreignKey:UserID" json:"vehicles,omitempty"`
}

// Profile is the subset of User returned by profile and listing endpoints.
type Profile struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified,omitempty"`
}

// ToProfile strips credentials and internal fields from a User.
func (u *User) ToProfile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}
