package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-portal/internal/api/dto"
	"github.com/spec-kit/dispute-portal/internal/service"
)

// DashboardHandler serves dashboard metrics.
type DashboardHandler struct {
	disputes *service.DisputeService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(disputes *service.DisputeService) *DashboardHandler {
	return &DashboardHandler{disputes: disputes}
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	view, err := h.disputes.Dashboard(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.FromDashboard(view)})
}
