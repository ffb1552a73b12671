package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*postgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	store := &postgresStore{db: db}
	cleanup := func() { _ = db.Close() }
	return store, mock, cleanup
}

func TestPostgresInsert(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	old := newID
	newID = func() string { return "3f1c1b4e-0000-4000-8000-000000000001" }
	t.Cleanup(func() { newID = old })

	doc := sampleDocument()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reit_documents (id, captured_at, body) VALUES ($1, $2, $3)`)).
		WithArgs("3f1c1b4e-0000-4000-8000-000000000001", doc.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.Insert(context.Background(), doc)
	if err != nil {
		t.Fatalf("Insert err: %v", err)
	}
	if id != "3f1c1b4e-0000-4000-8000-000000000001" {
		t.Fatalf("id=%q", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresInsert_ExecError(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`INSERT INTO reit_documents`).WillReturnError(errors.New("disk full"))

	if _, err := store.Insert(context.Background(), sampleDocument()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresLatest(t *testing.T) {
	latestQuery := regexp.QuoteMeta(`SELECT id, body FROM reit_documents ORDER BY captured_at DESC LIMIT 1`)

	cases := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantNil bool
		wantErr bool
	}{
		{
			name: "document",
			setup: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "body"}).
					AddRow("doc-1", []byte(`{"A17U.SI":{"name":"CapitaLand Ascendas","price":2.62},"timestamp":"2024-03-08T09:30:00Z"}`))
				m.ExpectQuery(latestQuery).WillReturnRows(rows)
			},
		},
		{
			name: "empty table",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(latestQuery).WillReturnError(sql.ErrNoRows)
			},
			wantNil: true,
		},
		{
			name: "query error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(latestQuery).WillReturnError(errors.New("conn reset"))
			},
			wantErr: true,
		},
		{
			name: "corrupt body",
			setup: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "body"}).AddRow("doc-2", []byte(`{`))
				m.ExpectQuery(latestQuery).WillReturnRows(rows)
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock, done := newMockStore(t)
			defer done()
			tc.setup(mock)

			out, err := store.Latest(context.Background())
			switch {
			case tc.wantErr:
				if err == nil {
					t.Fatalf("expected error, got %+v", out)
				}
			case tc.wantNil:
				if err != nil || out != nil {
					t.Fatalf("want nil,nil got out=%+v err=%v", out, err)
				}
			default:
				if err != nil || out == nil {
					t.Fatalf("unexpected out=%+v err=%v", out, err)
				}
				if out.ID != "doc-1" || out.Body["timestamp"] != "2024-03-08T09:30:00Z" {
					t.Fatalf("unexpected document: %+v", out)
				}
				rec, ok := out.Body["A17U.SI"].(map[string]any)
				if !ok || rec["name"] != "CapitaLand Ascendas" {
					t.Fatalf("unexpected record: %#v", out.Body["A17U.SI"])
				}
			}
		})
	}
}

func TestPostgresPing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectPing().WillReturnError(errors.New("down"))
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
}
