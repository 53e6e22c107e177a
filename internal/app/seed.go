package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

// CredentialHeaders is the header row of a seeded credentials table.
var CredentialHeaders = []string{"Email", "Password", "Supplier ID", "Supplier Name", "Role"}

type demoSupplier struct {
	email, password, id, name string
	hashed                    bool
}

var demoSuppliers = []demoSupplier{
	{email: "acme@example.com", password: "Acme#2024", id: "SUP-100", name: "Acme Logistics", hashed: true},
	{email: "globex@example.com", password: "Globex#2024", id: "SUP-200", name: "Globex Retail"},
}

type demoDispute struct {
	supplier    int
	ageDays     int
	status      domain.DisputeStatus
	priority    domain.DisputePriority
	disputeType string
	city        string
	description string
	amount      string
}

var demoDisputes = []demoDispute{
	{0, 1, domain.DisputeStatusPending, domain.DisputePriorityHigh, "Damaged Item", "Lagos", "Outer carton crushed on arrival", "120.00"},
	{0, 5, domain.DisputeStatusPending, domain.DisputePriorityMedium, "Missing Item", "Abuja", "One unit missing from a three-pack", "45.50"},
	{0, 9, domain.DisputeStatusInProgress, domain.DisputePriorityUrgent, "Wrong Item", "Lagos", "Received blue variant instead of black", "80"},
	{0, 20, domain.DisputeStatusResolved, domain.DisputePriorityLow, "Damaged Item", "Kano", "Scratched casing", "15"},
	{1, 2, domain.DisputeStatusUnderReview, domain.DisputePriorityMedium, "Fake Return", "Ibadan", "Returned box contained a different product", "300"},
	{1, 12, domain.DisputeStatusFakeSignatures, domain.DisputePriorityHigh, "Fake Return", "Lagos", "Signature on delivery proof does not match", "210"},
	{1, 30, domain.DisputeStatusPaid, domain.DisputePriorityMedium, "Missing Item", "Abuja", "Parcel never delivered", "99.99"},
	{1, 16, domain.DisputeStatusPending, domain.DisputePriorityLow, "Other", "Port Harcourt", "Courier marked as returned without pickup", ""},
}

// SeedDemo fills an empty store with suppliers and disputes spread across statuses and
// ages. Tables that already exist are left alone.
func SeedDemo(ctx context.Context, store rowstore.Store, n *normalize.Normalizer, cfg config.RowStoreConfig) error {
	if err := seedCredentials(ctx, store, cfg.CredentialsTable); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, table := range cfg.DisputeTables {
		if _, err := store.Headers(ctx, table); err == nil {
			continue
		}
		if err := store.EnsureTable(ctx, table, n.DefaultHeaders()); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
	}

	headers, err := store.Headers(ctx, cfg.PrimaryTable())
	if err != nil {
		return err
	}
	existing, err := store.List(ctx, cfg.PrimaryTable())
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for i, dd := range demoDisputes {
		s := demoSuppliers[dd.supplier]
		submitted := now.Add(-time.Duration(dd.ageDays) * 24 * time.Hour)
		d := domain.Dispute{
			ID:             uuid.NewString(),
			OrderItemID:    fmt.Sprintf("OI-%05d", 10001+i),
			TrackingID:     fmt.Sprintf("TRK-%06d", 500100+i*7),
			DisputeType:    dd.disputeType,
			Priority:       dd.priority,
			SupplierName:   s.name,
			SupplierEmail:  s.email,
			SupplierID:     s.id,
			Description:    dd.description,
			City:           dd.city,
			Status:         dd.status,
			SubmissionDate: submitted,
			LastUpdateDate: submitted,
			Amount:         dd.amount,
		}
		if err := store.Append(ctx, cfg.PrimaryTable(), n.MapToHeaders(d, headers)); err != nil {
			return err
		}
	}
	return nil
}

func seedCredentials(ctx context.Context, store rowstore.Store, table string) error {
	if _, err := store.Headers(ctx, table); err == nil {
		return nil
	}
	if err := store.EnsureTable(ctx, table, CredentialHeaders); err != nil {
		return err
	}
	for _, s := range demoSuppliers {
		password := s.password
		if s.hashed {
			hashed, err := auth.HashPassword(s.password, bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			password = hashed
		}
		row := rowstore.Row{
			"Email":         s.email,
			"Password":      password,
			"Supplier ID":   s.id,
			"Supplier Name": s.name,
			"Role":          string(domain.RoleSupplier),
		}
		if err := store.Append(ctx, table, row); err != nil {
			return err
		}
	}
	return nil
}
