package service

import (
	"context"

	"github.com/qwlai/reit-tracker/internal/storage"
)

// ReitService defines read access to crawled REIT documents.
type ReitService interface {
	Latest(ctx context.Context) (*storage.StoredDocument, error)
}

type reitService struct {
	store storage.DocumentStore
}

func NewReitService(store storage.DocumentStore) ReitService {
	return &reitService{store: store}
}

// Latest returns the newest stored document, or nil when nothing has been crawled yet.
func (s *reitService) Latest(ctx context.Context) (*storage.StoredDocument, error) {
	return s.store.Latest(ctx)
}
