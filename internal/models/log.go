package models

import "time"

// LogEntry is one append-only audit record. The application never updates
// or deletes rows in this table.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Action    string    `gorm:"not null" json:"action"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PageMeta carries the shared pagination envelope for list endpoints.
type PageMeta struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Limit       int   `json:"limit"`
}

// NewPageMeta computes the meta block from a total count and page/limit.
func NewPageMeta(totalItems int64, page, limit int) PageMeta {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return PageMeta{
		TotalItems:  totalItems,
		CurrentPage: page,
		TotalPages:  totalPages,
		Limit:       limit,
	}
}
