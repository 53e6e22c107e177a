package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-portal/internal/api/dto"
	"github.com/spec-kit/dispute-portal/internal/service"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// AttachmentsHandler issues upload URLs for dispute evidence.
type AttachmentsHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachments *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

// Presign handles POST /api/attachments/presign.
func (h *AttachmentsHandler) Presign(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req dto.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	upload, err := h.attachments.Presign(c.UserContext(), identity, req.Filename, req.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": dto.PresignResponse{
			Key:         upload.Key,
			URL:         upload.URL,
			ContentType: upload.ContentType,
			ExpiresIn:   int(upload.ExpiresIn.Seconds()),
		},
	})
}

// List handles GET /api/attachments.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	refs, err := h.attachments.Uploads(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.FromAttachments(refs)})
}
