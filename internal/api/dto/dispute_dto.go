package dto

import (
	"time"

	"github.com/spec-kit/dispute-portal/internal/dashboard"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/service"
)

// CreateDisputeRequest payload for POST /api/disputes.
type CreateDisputeRequest struct {
	OrderItemID            string `json:"orderItemId"`
	TrackingID             string `json:"trackingId"`
	DisputeType            string `json:"disputeType"`
	Category               string `json:"category"`
	Subcategory            string `json:"subcategory"`
	Priority               string `json:"priority"`
	SupplierName           string `json:"supplierName"`
	SupplierEmail          string `json:"supplierEmail"`
	SupplierID             string `json:"supplierId"`
	Description            string `json:"description"`
	City                   string `json:"city"`
	Attachments            string `json:"attachments"`
	Amount                 string `json:"amount"`
	ContactPhone           string `json:"contactPhone"`
	PreferredContact       string `json:"preferredContact"`
	ExpectedResolutionDate string `json:"expectedResolutionDate"`
}

// ToInput converts the request into service input.
func (r CreateDisputeRequest) ToInput() service.DisputeInput {
	return service.DisputeInput{
		OrderItemID:            r.OrderItemID,
		TrackingID:             r.TrackingID,
		DisputeType:            r.DisputeType,
		Category:               r.Category,
		Subcategory:            r.Subcategory,
		Priority:               r.Priority,
		SupplierName:           r.SupplierName,
		SupplierEmail:          r.SupplierEmail,
		SupplierID:             r.SupplierID,
		Description:            r.Description,
		City:                   r.City,
		Attachments:            r.Attachments,
		Amount:                 r.Amount,
		ContactPhone:           r.ContactPhone,
		PreferredContact:       r.PreferredContact,
		ExpectedResolutionDate: r.ExpectedResolutionDate,
	}
}

// UpdateStatusRequest payload for PATCH /api/disputes/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// DisputeResponse is the API shape of a dispute.
type DisputeResponse struct {
	ID                     string     `json:"id"`
	OrderItemID            string     `json:"orderItemId"`
	TrackingID             string     `json:"trackingId"`
	DisputeType            string     `json:"disputeType,omitempty"`
	Category               string     `json:"category,omitempty"`
	Subcategory            string     `json:"subcategory,omitempty"`
	Priority               string     `json:"priority"`
	SupplierName           string     `json:"supplierName"`
	SupplierEmail          string     `json:"supplierEmail"`
	SupplierID             string     `json:"supplierId,omitempty"`
	Description            string     `json:"description,omitempty"`
	City                   string     `json:"city,omitempty"`
	Status                 string     `json:"status"`
	SubmissionDate         *time.Time `json:"submissionDate,omitempty"`
	LastUpdateDate         *time.Time `json:"lastUpdateDate,omitempty"`
	Attachments            string     `json:"attachments,omitempty"`
	Amount                 string     `json:"amount,omitempty"`
	ContactPhone           string     `json:"contactPhone,omitempty"`
	PreferredContact       string     `json:"preferredContact,omitempty"`
	ExpectedResolutionDate string     `json:"expectedResolutionDate,omitempty"`
}

// FromDispute converts a dispute into its response shape.
func FromDispute(d domain.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:                     d.ID,
		OrderItemID:            d.OrderItemID,
		TrackingID:             d.TrackingID,
		DisputeType:            d.DisputeType,
		Category:               d.Category,
		Subcategory:            d.Subcategory,
		Priority:               string(d.Priority),
		SupplierName:           d.SupplierName,
		SupplierEmail:          d.SupplierEmail,
		SupplierID:             d.SupplierID,
		Description:            d.Description,
		City:                   d.City,
		Status:                 string(d.Status),
		SubmissionDate:         optionalTime(d.SubmissionDate),
		LastUpdateDate:         optionalTime(d.LastUpdateDate),
		Attachments:            d.Attachments,
		Amount:                 d.Amount,
		ContactPhone:           d.ContactPhone,
		PreferredContact:       d.PreferredContact,
		ExpectedResolutionDate: d.ExpectedResolutionDate,
	}
}

// FromDisputes converts a collection, never returning nil.
func FromDisputes(records []domain.Dispute) []DisputeResponse {
	out := make([]DisputeResponse, 0, len(records))
	for _, d := range records {
		out = append(out, FromDispute(d))
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// DashboardResponse is returned by GET /api/dashboard.
type DashboardResponse struct {
	Summary     dashboard.Summary       `json:"summary"`
	Breakdown   []dashboard.StatusCount `json:"breakdown"`
	AgeBuckets  []dashboard.AgeBucket   `json:"ageBuckets"`
	Recent      []DisputeResponse       `json:"recent"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// FromDashboard converts the dashboard view into its response shape.
func FromDashboard(view *service.DashboardView) DashboardResponse {
	return DashboardResponse{
		Summary:     view.Summary,
		Breakdown:   view.Breakdown,
		AgeBuckets:  view.AgeBuckets,
		Recent:      FromDisputes(view.Recent),
		GeneratedAt: view.GeneratedAt,
	}
}

// PresignRequest payload for POST /api/attachments/presign.
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// PresignResponse tells the client where to upload.
type PresignResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AttachmentResponse is one previously issued upload.
type AttachmentResponse struct {
	Key         string    `json:"key"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromAttachments maps upload references for the response body.
func FromAttachments(refs []domain.AttachmentReference) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, AttachmentResponse{
			Key:         ref.StorageKey,
			FileName:    ref.FileName,
			ContentType: ref.ContentType,
			CreatedAt:   ref.CreatedAt,
		})
	}
	return out
}
