package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

// CredentialRepository reads the supplier credentials table.
type CredentialRepository interface {
	List(ctx context.Context) ([]domain.Credential, error)
}

type sheetCredentialRepository struct {
	store      rowstore.Store
	normalizer *normalize.Normalizer
	table      string
}

// NewCredentialRepository instantiates repository.
func NewCredentialRepository(store rowstore.Store, normalizer *normalize.Normalizer, table string) CredentialRepository {
	return &sheetCredentialRepository{store: store, normalizer: normalizer, table: table}
}

// List returns every credential row. A missing table yields no credentials.
func (r *sheetCredentialRepository) List(ctx context.Context) ([]domain.Credential, error) {
	rows, err := r.store.List(ctx, r.table)
	if err != nil {
		if errors.Is(err, rowstore.ErrTableNotFound) {
			return nil, nil
		}
		return nil, err
	}
	creds := make([]domain.Credential, 0, len(rows))
	for _, row := range rows {
		c := r.normalizer.Credential(row)
		if c.Email == "" {
			continue
		}
		creds = append(creds, c)
	}
	return creds, nil
}
