package server

import (
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetLogs handles GET /api/logs (admin only). Viewing the audit trail is
// itself an audited action.
func (s *Server) GetLogs(c *fiber.Ctx) error {
	q := parseListQuery(c)

	entries, total, err := s.logRepo.List(c.Context(), q.Page, q.Limit, q.Search)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, currentUserID(c), "Admin viewed audit logs")

	return c.JSON(fiber.Map{
		"logs": entries,
		"meta": models.NewPageMeta(total, q.Page, q.Limit),
	})
}
