package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qwlai/reit-tracker/internal/domain/models"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore keeps every crawl as one JSONB row of reit_documents.
func NewPostgresStore(db *sql.DB) DocumentStore {
	return &postgresStore{db: db}
}

// newID is an indirection for unit testing.
var newID = uuid.NewString

func (s *postgresStore) Insert(ctx context.Context, doc models.ReitDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := newID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reit_documents (id, captured_at, body) VALUES ($1, $2, $3)`,
		id, doc.Timestamp, body,
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// Latest returns the most recently captured document, or nil when the table is empty.
func (s *postgresStore) Latest(ctx context.Context) (*StoredDocument, error) {
	var (
		id   string
		body []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, body FROM reit_documents ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&id, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest document: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &StoredDocument{ID: id, Body: m}, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
