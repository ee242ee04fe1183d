package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/observability"

	"gorm.io/gorm"
)

// Workflow sentinels surfaced by the approval/rejection paths. Handlers map
// these to their HTTP statuses.
var (
	// ErrNotPending means the request does not exist or has already been
	// processed; the two cases are deliberately indistinguishable.
	ErrNotPending = errors.New("request not found or already processed")
	// ErrNoCompatibleSlot means no available slot matches the vehicle's
	// type and size.
	ErrNoCompatibleSlot = errors.New("no compatible slots available")
)

// RequestRepository defines the interface for slot request operations,
// including the transactional approval workflow.
type RequestRepository interface {
	Create(ctx context.Context, request *models.SlotRequest) error
	GetByID(ctx context.Context, id uint) (*models.SlotRequest, error)
	GetPendingDetail(ctx context.Context, id uint) (*models.SlotRequest, error)
	List(ctx context.Context, userID uint, isAdmin bool, page, limit int, search string) ([]models.SlotRequest, int64, error)
	UpdateOwnedPending(ctx context.Context, id, userID, vehicleID uint) (int64, error)
	DeleteOwnedPending(ctx context.Context, id, userID uint) (int64, error)
	Approve(ctx context.Context, id uint) (*models.ParkingSlot, error)
	Reject(ctx context.Context, id uint) error
	FindContextSlot(ctx context.Context, vehicleType, size string) (*models.ParkingSlot, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new slot request repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *models.SlotRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.SlotRequest, error) {
	var request models.SlotRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// GetPendingDetail loads a pending request with its vehicle and owner, as
// needed for notification context. Returns nil when the request is missing
// or already processed.
func (r *requestRepository) GetPendingDetail(ctx context.Context, id uint) (*models.SlotRequest, error) {
	var request models.SlotRequest
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Vehicle.User").
		Where("status = ?", models.RequestPending).
		First(&request, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// List returns a request page joined with vehicle data. Admins see every
// request; regular users only requests for their own vehicles. The search
// term matches the plate number or the status text, case-insensitively.
func (r *requestRepository) List(ctx context.Context, userID uint, isAdmin bool, page, limit int, search string) ([]models.SlotRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SlotRequest{}).
		Joins("JOIN vehicles ON vehicles.id = slot_requests.vehicle_id")
	if !isAdmin {
		query = query.Where("vehicles.user_id = ?", userID)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(vehicles.plate_number) LIKE ? OR LOWER(slot_requests.status) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var requests []models.SlotRequest
	err := query.
		Preload("Vehicle").
		Order("slot_requests.id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return requests, total, nil
}

// UpdateOwnedPending reassigns the vehicle reference, but only while the
// request is pending and reachable through a vehicle the user owns.
func (r *requestRepository) UpdateOwnedPending(ctx context.Context, id, userID, vehicleID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SlotRequest{}).
		Where("id = ? AND status = ? AND vehicle_id IN (SELECT id FROM vehicles WHERE user_id = ?)",
			id, models.RequestPending, userID).
		Update("vehicle_id", vehicleID)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *requestRepository) DeleteOwnedPending(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND vehicle_id IN (SELECT id FROM vehicles WHERE user_id = ?)",
			id, models.RequestPending, userID).
		Delete(&models.SlotRequest{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// Approve runs the reservation as one all-or-nothing transaction: the request
// moves to approved and the chosen slot to unavailable together, or neither
// does. Candidate slots are claimed with a conditional update so a concurrent
// approval that grabbed the same slot first simply moves this one to the next
// candidate instead of double-booking.
func (r *requestRepository) Approve(ctx context.Context, id uint) (*models.ParkingSlot, error) {
	defer observability.TrackQuery("approve", "slot_requests")()

	var claimed *models.ParkingSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.SlotRequest
		err := tx.Preload("Vehicle").
			Where("status = ?", models.RequestPending).
			First(&request, id).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotPending
			}
			return err
		}
		if request.Vehicle == nil {
			return ErrNotPending
		}

		var candidates []models.ParkingSlot
		err = tx.Where("vehicle_type = ? AND size = ? AND status = ?",
			request.Vehicle.VehicleType, request.Vehicle.Size, models.SlotAvailable).
			Order("id ASC").
			Find(&candidates).Error
		if err != nil {
			return err
		}

		for i := range candidates {
			res := tx.Model(&models.ParkingSlot{}).
				Where("id = ? AND status = ?", candidates[i].ID, models.SlotAvailable).
				Update("status", models.SlotUnavailable)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				candidates[i].Status = models.SlotUnavailable
				claimed = &candidates[i]
				break
			}
			// Zero rows: another approval claimed this slot between the
			// search and the update. Try the next candidate.
		}
		if claimed == nil {
			return ErrNoCompatibleSlot
		}

		now := time.Now()
		res := tx.Model(&models.SlotRequest{}).
			Where("id = ? AND status = ?", id, models.RequestPending).
			Updates(map[string]interface{}{
				"status":      models.RequestApproved,
				"slot_id":     claimed.ID,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race on the request itself; roll back the slot claim.
			return ErrNotPending
		}
		return nil
	})
	if err != nil {
		observability.SlotApprovals.WithLabelValues("failed").Inc()
		if errors.Is(err, ErrNotPending) || errors.Is(err, ErrNoCompatibleSlot) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}

	observability.SlotApprovals.WithLabelValues("approved").Inc()
	return claimed, nil
}

// Reject moves a pending request to rejected. No slot is touched; none was
// ever assigned to a pending request.
func (r *requestRepository) Reject(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.SlotRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Update("status", models.RequestRejected)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// FindContextSlot returns any slot matching the type and size regardless of
// status. Used only to put an example location into rejection emails.
func (r *requestRepository) FindContextSlot(ctx context.Context, vehicleType, size string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	err := r.db.WithContext(ctx).
		Where("vehicle_type = ? AND size = ?", vehicleType, size).
		First(&slot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &slot, nil
}
