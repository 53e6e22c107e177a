package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// DisputeRepository encapsulates dispute persistence over the sheet tables.
type DisputeRepository interface {
	List(ctx context.Context, owners ...string) ([]domain.Dispute, error)
	Get(ctx context.Context, id string) (*domain.Dispute, error)
	Create(ctx context.Context, dispute *domain.Dispute) error
	UpdateStatus(ctx context.Context, id string, status domain.DisputeStatus) (*domain.Dispute, error)
}

// Option customizes a dispute repository.
type Option func(*sheetDisputeRepository)

// WithClock replaces the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(r *sheetDisputeRepository) { r.now = now }
}

type sheetDisputeRepository struct {
	store      rowstore.Store
	normalizer *normalize.Normalizer
	tables     []string
	now        func() time.Time
}

// NewDisputeRepository reads from tables[0] and writes new disputes to every table.
func NewDisputeRepository(store rowstore.Store, normalizer *normalize.Normalizer, tables []string, opts ...Option) DisputeRepository {
	r := &sheetDisputeRepository{
		store:      store,
		normalizer: normalizer,
		tables:     tables,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *sheetDisputeRepository) primary() string {
	return r.tables[0]
}

func (r *sheetDisputeRepository) List(ctx context.Context, owners ...string) ([]domain.Dispute, error) {
	rows, err := r.store.List(ctx, r.primary())
	if errors.Is(err, rowstore.ErrTableNotFound) {
		return []domain.Dispute{}, nil
	}
	if err != nil {
		return nil, err
	}
	disputes := make([]domain.Dispute, 0, len(rows))
	for _, row := range rows {
		d := r.normalizer.Normalize(row)
		if len(owners) > 0 && !ownedByAny(d, owners) {
			continue
		}
		disputes = append(disputes, d)
	}
	return disputes, nil
}

func ownedByAny(d domain.Dispute, owners []string) bool {
	for _, owner := range owners {
		if d.IsOwnedBy(owner) {
			return true
		}
	}
	return false
}

func (r *sheetDisputeRepository) Get(ctx context.Context, id string) (*domain.Dispute, error) {
	d, _, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *sheetDisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	if err := validateDispute(dispute); err != nil {
		return err
	}

	now := r.now().UTC().Truncate(time.Second)
	dispute.ID = uuid.NewString()
	dispute.Status = domain.DisputeStatusPending
	dispute.SubmissionDate = now
	dispute.LastUpdateDate = now

	g, gctx := errgroup.WithContext(ctx)
	for _, table := range r.tables {
		g.Go(func() error {
			headers, err := r.headersFor(gctx, table)
			if err != nil {
				return err
			}
			if err := r.store.Append(gctx, table, r.normalizer.MapToHeaders(*dispute, headers)); err != nil {
				return fmt.Errorf("append to %s: %w", table, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// headersFor returns a table's header row, creating the table with the default
// layout when it does not exist yet.
func (r *sheetDisputeRepository) headersFor(ctx context.Context, table string) ([]string, error) {
	headers, err := r.store.Headers(ctx, table)
	if err == nil {
		return headers, nil
	}
	if !errors.Is(err, rowstore.ErrTableNotFound) {
		return nil, err
	}
	if err := r.store.EnsureTable(ctx, table, r.normalizer.DefaultHeaders()); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	return r.store.Headers(ctx, table)
}

func (r *sheetDisputeRepository) UpdateStatus(ctx context.Context, id string, status domain.DisputeStatus) (*domain.Dispute, error) {
	d, index, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	headers, err := r.store.Headers(ctx, r.primary())
	if err != nil {
		return nil, err
	}
	statusCols := r.normalizer.ColumnsFor(headers, config.FieldStatus)
	if len(statusCols) == 0 {
		return nil, errorutil.NewInternalError(fmt.Errorf("table %s has no status column", r.primary()))
	}

	now := r.now().UTC().Truncate(time.Second)
	if now.Before(d.SubmissionDate) {
		now = d.SubmissionDate
	}

	values := rowstore.Row{}
	for _, col := range statusCols {
		values[col] = string(status)
	}
	for _, col := range r.normalizer.ColumnsFor(headers, config.FieldLastUpdateDate) {
		values[col] = normalize.FormatTime(now)
	}
	if err := r.store.Update(ctx, r.primary(), index, values); err != nil {
		return nil, err
	}

	d.Status = status
	d.LastUpdateDate = now
	return &d, nil
}

func (r *sheetDisputeRepository) locate(ctx context.Context, id string) (domain.Dispute, int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Dispute{}, -1, errorutil.NewFieldError("id", "id is required")
	}
	rows, err := r.store.List(ctx, r.primary())
	if err != nil {
		return domain.Dispute{}, -1, err
	}
	for i, row := range rows {
		if d := r.normalizer.Normalize(row); d.ID == id {
			return d, i, nil
		}
	}
	return domain.Dispute{}, -1, errorutil.NewNotFound("dispute", map[string]any{"id": id})
}

func validateDispute(d *domain.Dispute) error {
	d.OrderItemID = strings.TrimSpace(d.OrderItemID)
	d.TrackingID = strings.TrimSpace(d.TrackingID)
	d.SupplierName = strings.TrimSpace(d.SupplierName)
	d.SupplierEmail = strings.TrimSpace(d.SupplierEmail)
	d.Amount = strings.TrimSpace(d.Amount)

	required := []struct {
		field string
		value string
	}{
		{config.FieldOrderItemID, d.OrderItemID},
		{config.FieldTrackingID, d.TrackingID},
		{config.FieldSupplierName, d.SupplierName},
		{config.FieldSupplierEmail, d.SupplierEmail},
	}
	for _, r := range required {
		if r.value == "" {
			return errorutil.NewFieldError(r.field, r.field+" is required")
		}
	}

	if !emailFormat.MatchString(d.SupplierEmail) {
		return errorutil.NewFieldError(config.FieldSupplierEmail, "supplierEmail must be a valid email address")
	}
	if d.Amount != "" {
		if _, err := decimal.NewFromString(d.Amount); err != nil {
			return errorutil.NewFieldError(config.FieldAmount, "amount must be numeric")
		}
	}

	priority, ok := domain.ParsePriority(string(d.Priority))
	if !ok {
		return errorutil.NewFieldError(config.FieldPriority, "priority must be one of Low, Medium, High, Urgent")
	}
	d.Priority = priority
	return nil
}
