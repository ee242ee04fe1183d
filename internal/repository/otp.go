package repository

import (
	"context"
	"time"

	"parkhub/internal/models"

	"gorm.io/gorm"
)

// OtpRepository defines the interface for one-time passcode operations.
type OtpRepository interface {
	Create(ctx context.Context, otp *models.OtpCode) error
	FindUsable(ctx context.Context, userID uint, code string, now time.Time) (*models.OtpCode, error)
	Consume(ctx context.Context, userID uint, code string) error
	DeleteForUser(ctx context.Context, userID uint) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates a new OTP repository.
func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, otp *models.OtpCode) error {
	if err := r.db.WithContext(ctx).Create(otp).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FindUsable returns an unexpired, unconsumed code row or nil. No distinction
// is made between never-existed, expired and wrong-code: callers report all
// three identically.
func (r *otpRepository) FindUsable(ctx context.Context, userID uint, code string, now time.Time) (*models.OtpCode, error) {
	var otp models.OtpCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND expires_at > ? AND consumed = ?", userID, code, now, false).
		First(&otp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &otp, nil
}

// Consume marks every row matching the user and code as consumed.
func (r *otpRepository) Consume(ctx context.Context, userID uint, code string) error {
	err := r.db.WithContext(ctx).
		Model(&models.OtpCode{}).
		Where("user_id = ? AND code = ?", userID, code).
		Update("consumed", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *otpRepository) DeleteForUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.OtpCode{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
