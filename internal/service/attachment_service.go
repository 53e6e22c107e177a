package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/repository"
	"github.com/spec-kit/dispute-portal/internal/storage"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// PresignedUpload describes where the client should PUT an attachment.
type PresignedUpload struct {
	Key         string
	URL         string
	ContentType string
	ExpiresIn   time.Duration
}

// AttachmentService issues presigned uploads for dispute evidence.
type AttachmentService struct {
	presigner storage.Presigner
	uploads   repository.AttachmentRepository
	bucket    string
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// AttachmentDependencies bundles collaborators for the attachment service. An empty
// Bucket disables uploads; Uploads may be nil.
type AttachmentDependencies struct {
	Presigner storage.Presigner
	Uploads   repository.AttachmentRepository
	Bucket    string
	TTL       time.Duration
	Logger    *zap.Logger
	Clock     func() time.Time
}

// NewAttachmentService builds the service.
func NewAttachmentService(deps AttachmentDependencies) *AttachmentService {
	s := &AttachmentService{
		presigner: deps.Presigner,
		uploads:   deps.Uploads,
		bucket:    deps.Bucket,
		ttl:       deps.TTL,
		logger:    deps.Logger,
		now:       deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Enabled reports whether uploads are configured.
func (s *AttachmentService) Enabled() bool {
	return s != nil && s.presigner != nil && s.bucket != ""
}

func ownerOf(identity domain.Identity) string {
	if identity.SupplierID != "" {
		return identity.SupplierID
	}
	return identity.Email
}

// Presign returns an upload URL for a file owned by identity.
func (s *AttachmentService) Presign(ctx context.Context, identity domain.Identity, filename, contentType string) (*PresignedUpload, error) {
	if !s.Enabled() {
		return nil, errorutil.NewDomainError("NOT_CONFIGURED", "attachment uploads are not configured", http.StatusServiceUnavailable, nil)
	}
	if err := storage.ValidateUpload(filename, contentType); err != nil {
		return nil, errorutil.NewValidationError(err.Error(), map[string]any{"field": "contentType"})
	}

	owner := ownerOf(identity)
	key := storage.BuildKey(owner, uuid.NewString(), filename)
	meta := map[string]string{"supplier-id": identity.SupplierID, "email": identity.Email}

	url, ttl, err := storage.PresignPut(ctx, s.presigner, s.bucket, key, contentType, meta, s.ttl)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	if s.uploads != nil {
		ref := domain.AttachmentReference{
			StorageKey:  key,
			FileName:    storage.SanitizeName(filename),
			ContentType: contentType,
			SupplierID:  owner,
			Email:       identity.Email,
			CreatedAt:   s.now().UTC(),
		}
		if err := s.uploads.Create(ctx, ref); err != nil {
			s.logger.Warn("failed to record attachment upload", zap.String("key", key), zap.Error(err))
		}
	}
	return &PresignedUpload{Key: key, URL: url, ContentType: contentType, ExpiresIn: ttl}, nil
}

// Uploads lists the uploads previously issued to identity.
func (s *AttachmentService) Uploads(ctx context.Context, identity domain.Identity) ([]domain.AttachmentReference, error) {
	if s == nil || s.uploads == nil {
		return []domain.AttachmentReference{}, nil
	}
	refs, err := s.uploads.ListBySupplier(ctx, ownerOf(identity))
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []domain.AttachmentReference{}
	}
	return refs, nil
}
