package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

// AttachmentHeaders is the fixed header row of the attachment upload log.
var AttachmentHeaders = []string{"Timestamp", "Storage Key", "File Name", "Content Type", "Supplier ID", "Email"}

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment domain.AttachmentReference) error
	ListBySupplier(ctx context.Context, supplierID string) ([]domain.AttachmentReference, error)
}

type sheetAttachmentRepository struct {
	store rowstore.Store
	table string
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(store rowstore.Store, table string) AttachmentRepository {
	return &sheetAttachmentRepository{store: store, table: table}
}

func (r *sheetAttachmentRepository) Create(ctx context.Context, attachment domain.AttachmentReference) error {
	if err := r.store.EnsureTable(ctx, r.table, AttachmentHeaders); err != nil {
		return err
	}
	return r.store.Append(ctx, r.table, rowstore.Row{
		"Timestamp":    normalize.FormatTime(attachment.CreatedAt),
		"Storage Key":  attachment.StorageKey,
		"File Name":    attachment.FileName,
		"Content Type": attachment.ContentType,
		"Supplier ID":  attachment.SupplierID,
		"Email":        attachment.Email,
	})
}

// ListBySupplier returns the uploads issued to supplierID, oldest first.
func (r *sheetAttachmentRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domain.AttachmentReference, error) {
	rows, err := r.store.List(ctx, r.table)
	if errors.Is(err, rowstore.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var refs []domain.AttachmentReference
	for _, row := range rows {
		if rowstore.Text(row["Supplier ID"]) != supplierID {
			continue
		}
		refs = append(refs, domain.AttachmentReference{
			StorageKey:  rowstore.Text(row["Storage Key"]),
			FileName:    rowstore.Text(row["File Name"]),
			ContentType: rowstore.Text(row["Content Type"]),
			SupplierID:  rowstore.Text(row["Supplier ID"]),
			Email:       rowstore.Text(row["Email"]),
			CreatedAt:   normalize.ParseTime(rowstore.Text(row["Timestamp"])),
		})
	}
	return refs, nil
}
