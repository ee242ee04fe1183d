package repository

import (
	"context"
	"strconv"
	"strings"

	"parkhub/internal/models"

	"gorm.io/gorm"
)

// LogRepository defines the interface for audit log operations.
type LogRepository interface {
	Append(ctx context.Context, userID uint, action string) error
	List(ctx context.Context, page, limit int, search string) ([]models.LogEntry, int64, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new audit log repository.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Append(ctx context.Context, userID uint, action string) error {
	entry := models.LogEntry{UserID: userID, Action: action}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns audit entries newest first. The search term matches the action
// text case-insensitively; a numeric term also matches the user ID exactly.
func (r *logRepository) List(ctx context.Context, page, limit int, search string) ([]models.LogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LogEntry{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		if id, err := strconv.Atoi(search); err == nil {
			query = query.Where("LOWER(action) LIKE ? OR user_id = ?", like, id)
		} else {
			query = query.Where("LOWER(action) LIKE ?", like)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var entries []models.LogEntry
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return entries, total, nil
}
