package server

import (
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	s.audit(c, user.ID, "User profile viewed")

	return c.JSON(fiber.Map{"user": user.ToProfile()})
}

// UpdateMyProfile handles PATCH /api/users/me. Name, email and password are
// mutable; role never changes through this endpoint.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Email != "" {
		existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if existing != nil && existing.ID != currentUserID(c) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("Email already in use"))
		}
		fields["email"] = req.Email
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		fields["password"] = string(hashed)
	}
	if len(fields) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Nothing to update"))
	}

	userID := currentUserID(c)
	if err := s.userRepo.UpdateFields(c.Context(), userID, fields); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	s.audit(c, userID, "User updated profile")

	return c.JSON(fiber.Map{"user": user.ToProfile()})
}

// GetAllUsers handles GET /api/users (admin only)
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	q := parseListQuery(c)

	users, total, err := s.userRepo.List(c.Context(), q.Page, q.Limit, q.Search)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}

	s.audit(c, currentUserID(c), "Users list viewed")

	return c.JSON(fiber.Map{
		"users": profiles,
		"meta":  models.NewPageMeta(total, q.Page, q.Limit),
	})
}

// DeleteUser handles DELETE /api/users/:id (admin only)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	if err := s.userRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, currentUserID(c), "Admin deleted user "+user.Email)

	return c.JSON(fiber.Map{"message": "User deleted"})
}
