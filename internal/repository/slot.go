package repository

import (
	"context"
	"strings"

	"parkhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRepository defines the interface for parking slot inventory operations.
type SlotRepository interface {
	BulkCreate(ctx context.Context, slots []models.ParkingSlot) ([]models.ParkingSlot, error)
	List(ctx context.Context, isAdmin bool, page, limit int, search string) ([]models.ParkingSlot, int64, error)
	GetByID(ctx context.Context, id uint) (*models.ParkingSlot, error)
	GetBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uint) (*models.ParkingSlot, error)
}

type slotRepository struct {
	db *gorm.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

// BulkCreate inserts the slots best-effort: rows whose slot number already
// exists are silently skipped. Returns the most recent rows so callers can
// echo what the inventory now holds.
func (r *slotRepository) BulkCreate(ctx context.Context, slots []models.ParkingSlot) ([]models.ParkingSlot, error) {
	if len(slots) > 0 {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&slots).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	var created []models.ParkingSlot
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(len(slots)).
		Find(&created).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// List returns a slot page. Non-admin callers only ever see available slots,
// whatever the search term.
func (r *slotRepository) List(ctx context.Context, isAdmin bool, page, limit int, search string) ([]models.ParkingSlot, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ParkingSlot{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(slot_number) LIKE ? OR LOWER(vehicle_type) LIKE ?", like, like)
	}
	if !isAdmin {
		query = query.Where("status = ?", models.SlotAvailable)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var slots []models.ParkingSlot
	if err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&slots).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return slots, total, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id uint) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &slot, nil
}

func (r *slotRepository) GetBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	err := r.db.WithContext(ctx).Where("slot_number = ?", slotNumber).First(&slot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &slot, nil
}

func (r *slotRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ParkingSlot{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the slot and returns it, or nil when it did not exist.
func (r *slotRepository) Delete(ctx context.Context, id uint) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&slot).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &slot, nil
}
