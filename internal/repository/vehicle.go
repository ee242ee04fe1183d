package repository

import (
	"context"
	"strconv"
	"strings"

	"parkhub/internal/models"

	"gorm.io/gorm"
)

// VehicleRepository defines the interface for vehicle data operations.
// Visibility rules: admins see every vehicle, regular users only their own.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByPlate(ctx context.Context, plateNumber string) (*models.Vehicle, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Vehicle, error)
	GetVisible(ctx context.Context, id, userID uint, isAdmin bool) (*models.Vehicle, error)
	List(ctx context.Context, userID uint, isAdmin bool, page, limit int, search string) ([]models.Vehicle, int64, error)
	UpdateOwned(ctx context.Context, id, userID uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *vehicleRepository) GetByPlate(ctx context.Context, plateNumber string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("plate_number = ?", plateNumber).First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) GetVisible(ctx context.Context, id, userID uint, isAdmin bool) (*models.Vehicle, error) {
	query := r.db.WithContext(ctx).
		Preload("SlotRequests", "status = ?", models.RequestApproved).
		Where("id = ?", id)
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}

	var vehicle models.Vehicle
	if err := query.First(&vehicle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, userID uint, isAdmin bool, page, limit int, search string) ([]models.Vehicle, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		// A numeric search term also matches the vehicle ID exactly.
		if id, err := strconv.Atoi(search); err == nil {
			query = query.Where("LOWER(plate_number) LIKE ? OR LOWER(vehicle_type) LIKE ? OR id = ?", like, like, id)
		} else {
			query = query.Where("LOWER(plate_number) LIKE ? OR LOWER(vehicle_type) LIKE ?", like, like)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var vehicles []models.Vehicle
	err := query.
		Preload("SlotRequests", "status = ?", models.RequestApproved).
		Order("id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&vehicles).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return vehicles, total, nil
}

// UpdateOwned applies the fields only when the vehicle belongs to the user.
// Returns the number of rows changed; zero means not found or not owned.
func (r *vehicleRepository) UpdateOwned(ctx context.Context, id, userID uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Vehicle{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
