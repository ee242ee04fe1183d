package server

import (
	"errors"
	"log/slog"

	"parkhub/internal/middleware"
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// ListQuery holds parsed page/limit/search query parameters.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

const (
	defaultPageLimit   = 10
	maxPaginationLimit = 100
)

// parseListQuery extracts the shared list parameters. Out-of-range values
// fall back to the defaults instead of erroring.
func parseListQuery(c *fiber.Ctx) ListQuery {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	return ListQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated caller's user ID from locals.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// isAdmin reports whether the authenticated caller carries the admin role.
func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == models.RoleAdmin
}

// audit appends an audit log entry for the caller. Failures are logged and
// swallowed; auditing never blocks the operation it records.
func (s *Server) audit(c *fiber.Ctx, userID uint, action string) {
	if err := s.logRepo.Append(c.UserContext(), userID, action); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to write audit log",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
