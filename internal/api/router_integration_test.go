//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/qwlai/reit-tracker/config"
	"github.com/qwlai/reit-tracker/internal/app"
	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/storage"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "reit",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=reit sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/reit?sslmode=disable", h, mp.Port())
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func openAndMigrate(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAPI_E2E_Latest(t *testing.T) {
	dsn, host, port, term := startPG(t)
	defer term()
	db := openAndMigrate(t, dsn)
	defer db.Close()

	price := 2.62
	doc := models.ReitDocument{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Records: map[string]models.Record{
			"A17U.SI": {Snapshot: models.Snapshot{Name: "CapitaLand Ascendas", Price: price}},
		},
	}
	id, err := storage.NewPostgresStore(db).Insert(context.Background(), doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	config.AppConfig.Store.Driver = "postgres"
	config.AppConfig.Postgres.Host = host
	p, _ := nat.ParsePort(port.Port())
	config.AppConfig.Postgres.Port = int(p)
	config.AppConfig.Postgres.User = "postgres"
	config.AppConfig.Postgres.Password = "postgres"
	config.AppConfig.Postgres.DBName = "reit"
	config.AppConfig.Postgres.SSLMode = "disable"

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reits/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var raw struct {
		ID       string                     `json:"id"`
		Document map[string]json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(raw.Document["A17U.SI"], &rec); err != nil {
		t.Fatalf("record json: %v", err)
	}
	if raw.ID != id || rec["name"] != "CapitaLand Ascendas" || rec["price"] != price {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if _, ok := raw.Document["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %s", w.Body.String())
	}
}
