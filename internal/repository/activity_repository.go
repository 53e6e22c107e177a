package repository

import (
	"context"

	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

// ActivityHeaders is the fixed header row of the login activity table.
var ActivityHeaders = []string{"Timestamp", "Email", "Supplier ID", "Supplier Name", "Status", "Error Message"}

// ActivityRepository appends login attempts to the activity log.
type ActivityRepository interface {
	Record(ctx context.Context, attempt domain.LoginAttempt) error
}

type sheetActivityRepository struct {
	store rowstore.Store
	table string
}

// NewActivityRepository instantiates repository.
func NewActivityRepository(store rowstore.Store, table string) ActivityRepository {
	return &sheetActivityRepository{store: store, table: table}
}

func (r *sheetActivityRepository) Record(ctx context.Context, attempt domain.LoginAttempt) error {
	if err := r.store.EnsureTable(ctx, r.table, ActivityHeaders); err != nil {
		return err
	}
	return r.store.Append(ctx, r.table, rowstore.Row{
		"Timestamp":     normalize.FormatTime(attempt.Timestamp),
		"Email":         attempt.Email,
		"Supplier ID":   attempt.SupplierID,
		"Supplier Name": attempt.SupplierName,
		"Status":        string(attempt.Status),
		"Error Message": attempt.ErrorMessage,
	})
}
