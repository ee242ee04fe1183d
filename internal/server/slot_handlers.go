package server

import (
	"fmt"

	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateSlots handles POST /api/slots/bulk (admin only). Accepts a batch of slots
// and silently skips any whose slot number already exists.
func (s *Server) CreateSlots(c *fiber.Ctx) error {
	var req struct {
		Slots []struct {
			SlotNumber  string `json:"slot_number"`
			Size        string `json:"size"`
			VehicleType string `json:"vehicle_type"`
			Location    string `json:"location"`
		} `json:"slots"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.Slots) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("At least one slot is required"))
	}

	slots := make([]models.ParkingSlot, 0, len(req.Slots))
	for _, item := range req.Slots {
		if item.SlotNumber == "" || item.Size == "" || item.VehicleType == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Slot number, size, and vehicle type are required for every slot"))
		}
		slots = append(slots, models.ParkingSlot{
			SlotNumber:  item.SlotNumber,
			Size:        item.Size,
			VehicleType: item.VehicleType,
			Location:    item.Location,
			Status:      models.SlotAvailable,
		})
	}

	created, err := s.slotRepo.BulkCreate(c.Context(), slots)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, currentUserID(c), fmt.Sprintf("Bulk created %d slots", len(slots)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Slots created",
		"slots":   created,
	})
}

// GetSlots handles GET /api/slots. Non-admin callers only see available
// slots.
func (s *Server) GetSlots(c *fiber.Ctx) error {
	q := parseListQuery(c)

	slots, total, err := s.slotRepo.List(c.Context(), isAdmin(c), q.Page, q.Limit, q.Search)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, currentUserID(c), "Slots list viewed")

	return c.JSON(fiber.Map{
		"slots": slots,
		"meta":  models.NewPageMeta(total, q.Page, q.Limit),
	})
}

// UpdateSlot handles PATCH /api/slots/:id (admin only)
func (s *Server) UpdateSlot(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		SlotNumber  string `json:"slot_number"`
		Size        string `json:"size"`
		VehicleType string `json:"vehicle_type"`
		Location    string `json:"location"`
		Status      string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]interface{}{}
	if req.SlotNumber != "" {
		existing, serr := s.slotRepo.GetBySlotNumber(c.Context(), req.SlotNumber)
		if serr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, serr)
		}
		if existing != nil && existing.ID != id {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("Slot with this number already exists"))
		}
		fields["slot_number"] = req.SlotNumber
	}
	if req.Size != "" {
		fields["size"] = req.Size
	}
	if req.VehicleType != "" {
		fields["vehicle_type"] = req.VehicleType
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Status != "" {
		if req.Status != models.SlotAvailable && req.Status != models.SlotUnavailable {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Status must be available or unavailable"))
		}
		fields["status"] = req.Status
	}
	if len(fields) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Nothing to update"))
	}

	rows, err := s.slotRepo.Update(c.Context(), id, fields)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if rows == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Slot not found"))
	}

	slot, err := s.slotRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if slot == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Slot not found"))
	}

	s.audit(c, currentUserID(c), "Slot "+slot.SlotNumber+" updated")

	return c.JSON(fiber.Map{"slot": slot})
}

// DeleteSlot handles DELETE /api/slots/:id (admin only)
func (s *Server) DeleteSlot(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	slot, err := s.slotRepo.Delete(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if slot == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Slot not found"))
	}

	s.audit(c, currentUserID(c), "Slot "+slot.SlotNumber+" deleted")

	return c.JSON(fiber.Map{
		"message": "Slot deleted",
		"slot":    slot,
	})
}
