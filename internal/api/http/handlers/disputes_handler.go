package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-portal/internal/api/dto"
	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/dashboard"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/service"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// DisputesHandler exposes the dispute collection.
type DisputesHandler struct {
	disputes *service.DisputeService
	now      func() time.Time
}

// NewDisputesHandler constructs handler.
func NewDisputesHandler(disputes *service.DisputeService) *DisputesHandler {
	return &DisputesHandler{disputes: disputes, now: time.Now}
}

func identityFrom(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, errorutil.NewUnauthorized("authentication required")
	}
	return principal.Identity, nil
}

func criteriaFrom(c *fiber.Ctx) dashboard.Criteria {
	return dashboard.Criteria{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		Priority:    c.Query("priority"),
		DisputeType: c.Query("type"),
		City:        c.Query("city"),
	}
}

// List handles GET /api/disputes.
func (h *DisputesHandler) List(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	records, err := h.disputes.List(c.UserContext(), identity, criteriaFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.FromDisputes(records),
		"total":   len(records),
	})
}

// Create handles POST /api/disputes.
func (h *DisputesHandler) Create(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	d, err := h.disputes.Submit(c.UserContext(), identity, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Dispute submitted successfully",
		"data":    dto.FromDispute(*d),
	})
}

// UpdateStatus handles PATCH /api/disputes/:id/status.
func (h *DisputesHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	d, err := h.disputes.UpdateStatus(c.UserContext(), identity, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated",
		"data":    dto.FromDispute(*d),
	})
}

// Export handles GET /api/disputes/export.
func (h *DisputesHandler) Export(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.disputes.ExportCSV(c.UserContext(), &buf, identity, criteriaFrom(c)); err != nil {
		return err
	}
	filename := fmt.Sprintf("disputes-%s.csv", h.now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
