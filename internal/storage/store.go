package storage

import (
	"context"

	"github.com/qwlai/reit-tracker/internal/domain/models"
)

// DocumentStore persists crawl output. Each Insert writes exactly one document;
// nothing is ever updated or deduplicated.
type DocumentStore interface {
	Insert(ctx context.Context, doc models.ReitDocument) (string, error)
	Latest(ctx context.Context) (*StoredDocument, error)
	Ping(ctx context.Context) error
}

// StoredDocument is a document read back from the store in its stored shape:
// provider symbols plus "timestamp" at the top level.
type StoredDocument struct {
	ID   string
	Body map[string]any
}
