package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/dashboard"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/events"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/repository"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

const recentDisputes = 5

// DisputeService coordinates dispute workflows.
type DisputeService struct {
	disputes   repository.DisputeRepository
	normalizer *normalize.Normalizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// DisputeDependencies bundles collaborators for the dispute service.
type DisputeDependencies struct {
	DisputeRepo repository.DisputeRepository
	Normalizer  *normalize.Normalizer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewDisputeService builds the service.
func NewDisputeService(deps DisputeDependencies) *DisputeService {
	s := &DisputeService{
		disputes:   deps.DisputeRepo,
		normalizer: deps.Normalizer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// DisputeInput describes a dispute submission.
type DisputeInput struct {
	OrderItemID            string
	TrackingID             string
	DisputeType            string
	Category               string
	Subcategory            string
	Priority               string
	SupplierName           string
	SupplierEmail          string
	SupplierID             string
	Description            string
	City                   string
	Attachments            string
	Amount                 string
	ContactPhone           string
	PreferredContact       string
	ExpectedResolutionDate string
}

func (in DisputeInput) dispute() *domain.Dispute {
	return &domain.Dispute{
		OrderItemID:            in.OrderItemID,
		TrackingID:             in.TrackingID,
		DisputeType:            strings.TrimSpace(in.DisputeType),
		Category:               strings.TrimSpace(in.Category),
		Subcategory:            strings.TrimSpace(in.Subcategory),
		Priority:               domain.DisputePriority(in.Priority),
		SupplierName:           in.SupplierName,
		SupplierEmail:          in.SupplierEmail,
		SupplierID:             strings.TrimSpace(in.SupplierID),
		Description:            strings.TrimSpace(in.Description),
		City:                   strings.TrimSpace(in.City),
		Attachments:            strings.TrimSpace(in.Attachments),
		Amount:                 in.Amount,
		ContactPhone:           strings.TrimSpace(in.ContactPhone),
		PreferredContact:       strings.TrimSpace(in.PreferredContact),
		ExpectedResolutionDate: strings.TrimSpace(in.ExpectedResolutionDate),
	}
}

// DashboardView is everything the dashboard screens render.
type DashboardView struct {
	Summary     dashboard.Summary       `json:"summary"`
	Breakdown   []dashboard.StatusCount `json:"breakdown"`
	AgeBuckets  []dashboard.AgeBucket   `json:"ageBuckets"`
	Recent      []domain.Dispute        `json:"recent"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// scoped returns every dispute visible to identity: all of them for admins, owned ones
// for suppliers.
func (s *DisputeService) scoped(ctx context.Context, identity domain.Identity) ([]domain.Dispute, error) {
	if identity.IsAdmin() {
		return s.disputes.List(ctx)
	}
	owners := identity.OwnerKeys()
	if len(owners) == 0 {
		return []domain.Dispute{}, nil
	}
	return s.disputes.List(ctx, owners...)
}

// List returns the disputes visible to identity that match criteria.
func (s *DisputeService) List(ctx context.Context, identity domain.Identity, criteria dashboard.Criteria) ([]domain.Dispute, error) {
	records, err := s.scoped(ctx, identity)
	if err != nil {
		return nil, err
	}
	return dashboard.Apply(records, criteria), nil
}

// Submit creates a dispute. Suppliers' own details fill any blank supplier fields.
func (s *DisputeService) Submit(ctx context.Context, identity domain.Identity, input DisputeInput) (*domain.Dispute, error) {
	if !identity.IsAdmin() {
		if strings.TrimSpace(input.SupplierName) == "" {
			input.SupplierName = identity.SupplierName
		}
		if strings.TrimSpace(input.SupplierEmail) == "" {
			input.SupplierEmail = identity.Email
		}
		if strings.TrimSpace(input.SupplierID) == "" {
			input.SupplierID = identity.SupplierID
		}
	}
	return s.create(ctx, events.ActorFrom(identity), input.dispute())
}

// SubmitRaw creates a dispute from a free-form payload keyed by any accepted field name.
func (s *DisputeService) SubmitRaw(ctx context.Context, payload rowstore.Row) (*domain.Dispute, error) {
	d := s.normalizer.Normalize(payload)
	// Normalize canonicalizes priority; an unrecognised value must still reach validation.
	d.Priority = domain.DisputePriority(s.normalizer.Field(payload, config.FieldPriority))
	return s.create(ctx, events.Actor{Email: d.SupplierEmail, SupplierID: d.SupplierID}, &d)
}

func (s *DisputeService) create(ctx context.Context, actor events.Actor, d *domain.Dispute) (*domain.Dispute, error) {
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventDisputeCreated,
		DisputeID: d.ID,
		Actor:     actor,
		Payload: events.DisputeCreatedPayload{
			OrderItemID:   d.OrderItemID,
			TrackingID:    d.TrackingID,
			SupplierName:  d.SupplierName,
			SupplierEmail: d.SupplierEmail,
			DisputeType:   d.DisputeType,
			Priority:      d.Priority,
		},
	})
	return d, nil
}

// UpdateStatus changes a dispute's status. Only administrators may do so.
func (s *DisputeService) UpdateStatus(ctx context.Context, identity domain.Identity, id, status string) (*domain.Dispute, error) {
	if !identity.IsAdmin() {
		return nil, errorutil.NewForbidden("only administrators can change dispute status")
	}
	return s.changeStatus(ctx, events.ActorFrom(identity), id, status)
}

// ChangeStatus changes a dispute's status without a role check. It serves the row-store
// endpoint, which carries no identity.
func (s *DisputeService) ChangeStatus(ctx context.Context, id, status string) (*domain.Dispute, error) {
	return s.changeStatus(ctx, events.Actor{}, id, status)
}

func (s *DisputeService) changeStatus(ctx context.Context, actor events.Actor, id, raw string) (*domain.Dispute, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errorutil.NewFieldError(config.FieldStatus, "status is required")
	}
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return nil, errorutil.NewFieldError(config.FieldStatus, "unknown status "+strings.TrimSpace(raw))
	}

	current, err := s.disputes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.disputes.UpdateStatus(ctx, current.ID, status)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDisputeStatusChanged,
		DisputeID: updated.ID,
		Actor:     actor,
		Payload: events.DisputeStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

// Dashboard computes the metrics for the disputes visible to identity.
func (s *DisputeService) Dashboard(ctx context.Context, identity domain.Identity) (*DashboardView, error) {
	records, err := s.scoped(ctx, identity)
	if err != nil {
		return nil, err
	}
	now := s.now()
	summary := dashboard.Tally(records)
	return &DashboardView{
		Summary:     summary,
		Breakdown:   summary.Breakdown(),
		AgeBuckets:  dashboard.AgeBuckets(now, records),
		Recent:      mostRecent(records, recentDisputes),
		GeneratedAt: now.UTC(),
	}, nil
}

// Export returns the visible disputes matching criteria as a header row plus one string
// row per dispute.
func (s *DisputeService) Export(ctx context.Context, identity domain.Identity, criteria dashboard.Criteria) ([][]string, error) {
	records, err := s.List(ctx, identity, criteria)
	if err != nil {
		return nil, err
	}
	return dashboard.ExportTable(s.now(), records), nil
}

// ExportCSV writes the visible disputes matching criteria as CSV.
func (s *DisputeService) ExportCSV(ctx context.Context, w io.Writer, identity domain.Identity, criteria dashboard.Criteria) error {
	records, err := s.List(ctx, identity, criteria)
	if err != nil {
		return err
	}
	return dashboard.WriteCSV(w, s.now(), records)
}

func mostRecent(records []domain.Dispute, n int) []domain.Dispute {
	out := append([]domain.Dispute(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmissionDate.After(out[j].SubmissionDate)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *DisputeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("dispute_id", event.DisputeID),
			zap.Error(err))
	}
}
