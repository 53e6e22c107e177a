package repository

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

func TestAttachmentCreateAndListBySupplier(t *testing.T) {
	ctx := context.Background()
	store := rowstore.NewMemoryStore()
	repo := NewAttachmentRepository(store, "Attachment Uploads")

	refs, err := repo.ListBySupplier(ctx, "SUP-100")
	if err != nil || len(refs) != 0 {
		t.Fatalf("expected empty list before first upload, got %v, %v", refs, err)
	}

	created := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	for _, ref := range []domain.AttachmentReference{
		{StorageKey: "SUP-100/u1/photo.jpg", FileName: "photo.jpg", ContentType: "image/jpeg", SupplierID: "SUP-100", Email: "acme@example.com", CreatedAt: created},
		{StorageKey: "SUP-200/u2/label.pdf", FileName: "label.pdf", ContentType: "application/pdf", SupplierID: "SUP-200", CreatedAt: created},
	} {
		if err := repo.Create(ctx, ref); err != nil {
			t.Fatalf("create %s: %v", ref.StorageKey, err)
		}
	}

	refs, err = repo.ListBySupplier(ctx, "SUP-100")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(refs))
	}
	got := refs[0]
	if got.StorageKey != "SUP-100/u1/photo.jpg" || got.Email != "acme@example.com" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected reference %+v", got)
	}
}
