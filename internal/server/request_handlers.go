package server

import (
	"errors"
	"fmt"
	"log/slog"

	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/observability"
	"parkhub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// CreateRequest handles POST /api/requests
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	var req struct {
		VehicleID uint `json:"vehicle_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.VehicleID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Vehicle ID is required"))
	}

	// The vehicle must belong to the caller.
	vehicle, err := s.vehicleRepo.GetOwned(c.Context(), req.VehicleID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vehicle == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	request := &models.SlotRequest{
		VehicleID: vehicle.ID,
		Status:    models.RequestPending,
	}
	if createErr := s.requestRepo.Create(c.Context(), request); createErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	s.audit(c, currentUserID(c), "User created slot request for "+vehicle.PlateNumber)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

// GetRequests handles GET /api/requests. Admins see every request, regular
// users only requests for their own vehicles.
func (s *Server) GetRequests(c *fiber.Ctx) error {
	q := parseListQuery(c)

	requests, total, err := s.requestRepo.List(c.Context(), currentUserID(c), isAdmin(c), q.Page, q.Limit, q.Search)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	items := make([]models.RequestListItem, 0, len(requests))
	for i := range requests {
		item := models.RequestListItem{SlotRequest: requests[i]}
		if requests[i].Vehicle != nil {
			item.VehicleSummary = models.VehicleSummary{
				PlateNumber: requests[i].Vehicle.PlateNumber,
				VehicleType: requests[i].Vehicle.VehicleType,
			}
		}
		item.Vehicle = nil
		items = append(items, item)
	}

	s.audit(c, currentUserID(c), "Slot requests list viewed")

	return c.JSON(fiber.Map{
		"requests": items,
		"meta":     models.NewPageMeta(total, q.Page, q.Limit),
	})
}

// UpdateRequest handles PATCH /api/requests/:id. Only the vehicle reference of
// a still-pending, caller-owned request can change.
func (s *Server) UpdateRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		VehicleID uint `json:"vehicle_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.VehicleID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Vehicle ID is required"))
	}

	// The replacement vehicle must belong to the caller too.
	vehicle, err := s.vehicleRepo.GetOwned(c.Context(), req.VehicleID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vehicle == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	rows, err := s.requestRepo.UpdateOwnedPending(c.Context(), id, currentUserID(c), vehicle.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if rows == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request not found or already processed"))
	}

	s.audit(c, currentUserID(c), "User updated slot request for "+vehicle.PlateNumber)

	return c.JSON(fiber.Map{"message": "Request updated"})
}

// DeleteRequest handles DELETE /api/requests/:id. Only pending requests
// reachable through a vehicle the caller owns can be withdrawn.
func (s *Server) DeleteRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	rows, err := s.requestRepo.DeleteOwnedPending(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if rows == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request not found or already processed"))
	}

	s.audit(c, currentUserID(c), "User withdrew slot request")

	return c.JSON(fiber.Map{"message": "Request deleted"})
}

// ApproveRequest handles POST /api/requests/:id/approve (admin only).
//
// The slot assignment itself is transactional; the notification email is
// best-effort and its outcome is reported in the response instead of
// failing the approval.
func (s *Server) ApproveRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Load the notification context up front; the transaction only deals in
	// IDs and statuses.
	detail, err := s.requestRepo.GetPendingDetail(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if detail == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request not found or already processed"))
	}

	slot, err := s.requestRepo.Approve(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoCompatibleSlot):
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("No compatible slots available"))
		case errors.Is(err, repository.ErrNotPending):
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Request not found or already processed"))
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	emailStatus := "sent"
	if detail.Vehicle != nil && detail.Vehicle.User != nil {
		sendErr := s.mailer.SendApproval(detail.Vehicle.User.Email,
			detail.Vehicle.PlateNumber, slot.SlotNumber, slot.Location)
		if sendErr != nil {
			emailStatus = "failed"
			observability.EmailDeliveries.WithLabelValues("approval", "failed").Inc()
			middleware.Logger.WarnContext(c.UserContext(), "approval email delivery failed",
				slog.Uint64("request_id", uint64(id)),
				slog.Any("error", sendErr),
			)
		} else {
			observability.EmailDeliveries.WithLabelValues("approval", "sent").Inc()
		}
	} else {
		emailStatus = "failed"
	}

	s.audit(c, currentUserID(c),
		fmt.Sprintf("Slot request %d approved, assigned slot %s, email %s", id, slot.SlotNumber, emailStatus))

	return c.JSON(fiber.Map{
		"message":     "Request approved",
		"slot":        slot,
		"emailStatus": emailStatus,
	})
}

// RejectRequest handles POST /api/requests/:id/reject (admin only). A reason
// is required; it goes into the notification email.
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Reason == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rejection reason is required"))
	}

	detail, err := s.requestRepo.GetPendingDetail(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if detail == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request not found or already processed"))
	}

	// Email context only: any slot of the matching type/size tells the user
	// which lot area the decision concerned.
	location := "unknown"
	if detail.Vehicle != nil {
		if ctxSlot, slotErr := s.requestRepo.FindContextSlot(c.Context(),
			detail.Vehicle.VehicleType, detail.Vehicle.Size); slotErr == nil && ctxSlot != nil {
			location = ctxSlot.Location
		}
	}

	if err := s.requestRepo.Reject(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Request not found or already processed"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	emailStatus := "sent"
	if detail.Vehicle != nil && detail.Vehicle.User != nil {
		sendErr := s.mailer.SendRejection(detail.Vehicle.User.Email,
			detail.Vehicle.PlateNumber, location, req.Reason)
		if sendErr != nil {
			emailStatus = "failed"
			observability.EmailDeliveries.WithLabelValues("rejection", "failed").Inc()
			middleware.Logger.WarnContext(c.UserContext(), "rejection email delivery failed",
				slog.Uint64("request_id", uint64(id)),
				slog.Any("error", sendErr),
			)
		} else {
			observability.EmailDeliveries.WithLabelValues("rejection", "sent").Inc()
		}
	} else {
		emailStatus = "failed"
	}

	s.audit(c, currentUserID(c),
		fmt.Sprintf("Slot request %d rejected with reason: %s, email %s", id, req.Reason, emailStatus))

	rejected, err := s.requestRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Request rejected",
		"request":     rejected,
		"emailStatus": emailStatus,
	})
}
