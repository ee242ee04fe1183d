package server

import (
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateVehicle handles POST /api/vehicles
func (s *Server) CreateVehicle(c *fiber.Ctx) error {
	var req struct {
		PlateNumber     string `json:"plate_number"`
		VehicleType     string `json:"vehicle_type"`
		Size            string `json:"size"`
		OtherAttributes string `json:"other_attributes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PlateNumber == "" || req.VehicleType == "" || req.Size == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Plate number, vehicle type, and size are required"))
	}

	existing, err := s.vehicleRepo.GetByPlate(c.Context(), req.PlateNumber)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("Vehicle with this plate number already exists"))
	}

	vehicle := &models.Vehicle{
		UserID:          currentUserID(c),
		PlateNumber:     req.PlateNumber,
		VehicleType:     req.VehicleType,
		Size:            req.Size,
		OtherAttributes: req.OtherAttributes,
	}
	if createErr := s.vehicleRepo.Create(c.Context(), vehicle); createErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	s.audit(c, vehicle.UserID, "User registered vehicle "+vehicle.PlateNumber)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"vehicle": vehicle})
}

// GetVehicles handles GET /api/vehicles. Admins see every vehicle, regular
// users only their own.
func (s *Server) GetVehicles(c *fiber.Ctx) error {
	q := parseListQuery(c)

	vehicles, total, err := s.vehicleRepo.List(c.Context(), currentUserID(c), isAdmin(c), q.Page, q.Limit, q.Search)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	for i := range vehicles {
		vehicles[i].DeriveApprovalStatus()
	}

	s.audit(c, currentUserID(c), "Vehicles list viewed")

	return c.JSON(fiber.Map{
		"vehicles": vehicles,
		"meta":     models.NewPageMeta(total, q.Page, q.Limit),
	})
}

// GetVehicle handles GET /api/vehicles/:id
func (s *Server) GetVehicle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	vehicle, err := s.vehicleRepo.GetVisible(c.Context(), id, currentUserID(c), isAdmin(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vehicle == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	vehicle.DeriveApprovalStatus()

	s.audit(c, currentUserID(c), "Vehicle "+vehicle.PlateNumber+" viewed")

	return c.JSON(fiber.Map{"vehicle": vehicle})
}

// UpdateVehicle handles PATCH /api/vehicles/:id. Only the owner may update a
// vehicle; a zero-row update reads as not found.
func (s *Server) UpdateVehicle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		PlateNumber     string `json:"plate_number"`
		VehicleType     string `json:"vehicle_type"`
		Size            string `json:"size"`
		OtherAttributes string `json:"other_attributes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]interface{}{}
	if req.PlateNumber != "" {
		existing, perr := s.vehicleRepo.GetByPlate(c.Context(), req.PlateNumber)
		if perr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, perr)
		}
		if existing != nil && existing.ID != id {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("Vehicle with this plate number already exists"))
		}
		fields["plate_number"] = req.PlateNumber
	}
	if req.VehicleType != "" {
		fields["vehicle_type"] = req.VehicleType
	}
	if req.Size != "" {
		fields["size"] = req.Size
	}
	if req.OtherAttributes != "" {
		fields["other_attributes"] = req.OtherAttributes
	}
	if len(fields) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Nothing to update"))
	}

	rows, err := s.vehicleRepo.UpdateOwned(c.Context(), id, currentUserID(c), fields)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if rows == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	vehicle, err := s.vehicleRepo.GetOwned(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vehicle == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	s.audit(c, currentUserID(c), "Vehicle "+vehicle.PlateNumber+" updated")

	return c.JSON(fiber.Map{"vehicle": vehicle})
}

// DeleteVehicle handles DELETE /api/vehicles/:id. Owners can delete their own
// vehicles; admins can delete any.
func (s *Server) DeleteVehicle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	vehicle, err := s.vehicleRepo.GetVisible(c.Context(), id, currentUserID(c), isAdmin(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vehicle == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Vehicle not found"))
	}

	if err := s.vehicleRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, currentUserID(c), "Vehicle "+vehicle.PlateNumber+" deleted")

	return c.JSON(fiber.Map{"message": "Vehicle deleted"})
}
