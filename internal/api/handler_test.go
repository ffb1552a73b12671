package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/qwlai/reit-tracker/internal/domain/dto"
	"github.com/qwlai/reit-tracker/internal/service"
	"github.com/qwlai/reit-tracker/internal/storage"
)

type mockReitService struct {
	resp *storage.StoredDocument
	err  error
}

func (m *mockReitService) Latest(_ context.Context) (*storage.StoredDocument, error) {
	return m.resp, m.err
}

var _ service.ReitService = (*mockReitService)(nil)

func sampleStored() *storage.StoredDocument {
	return &storage.StoredDocument{
		ID: "doc-1",
		Body: map[string]any{
			"A17U.SI":   map[string]any{"name": "CapitaLand Ascendas", "price": 2.62},
			"timestamp": "2024-03-08T09:30:00Z",
		},
	}
}

func setupRouterWithMock(s service.ReitService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/reits/latest", h.GetLatest)
	return r
}

func TestGetLatest_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockReitService
		status int
		assert func(t *testing.T, body []byte)
	}{
		{
			name:   "not found",
			svc:    &mockReitService{},
			status: http.StatusNotFound,
		},
		{
			name:   "internal error",
			svc:    &mockReitService{err: errors.New("db down")},
			status: http.StatusInternalServerError,
			assert: func(t *testing.T, body []byte) {
				var out dto.ErrorResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.ErrorDetails != "db down" {
					t.Fatalf("unexpected body: %+v", out)
				}
			},
		},
		{
			name:   "success",
			svc:    &mockReitService{resp: sampleStored()},
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.LatestResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.ID != "doc-1" || out.Document["timestamp"] != "2024-03-08T09:30:00Z" {
					t.Fatalf("unexpected body: %+v", out)
				}
				if _, ok := out.Document["A17U.SI"]; !ok {
					t.Fatalf("missing symbol key: %+v", out.Document)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reits/latest", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetLatest_ErrorsAbortTheChain(t *testing.T) {
	cases := []struct {
		name    string
		svc     *mockReitService
		status  int
		aborted bool
	}{
		{"internal error", &mockReitService{err: errors.New("db down")}, http.StatusInternalServerError, true},
		{"not found", &mockReitService{}, http.StatusNotFound, true},
		{"success", &mockReitService{resp: sampleStored()}, http.StatusOK, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			h := NewHandler(tc.svc)
			after := false
			r := gin.New()
			r.GET("/api/v1/reits/latest", h.GetLatest, func(c *gin.Context) { after = true })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reits/latest", nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if after == tc.aborted {
				t.Fatalf("aborted=%v, want %v", !after, tc.aborted)
			}
			if tc.aborted {
				var out dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Message == "" {
					t.Fatalf("want an error body, got %s (%v)", w.Body.String(), err)
				}
			}
		})
	}
}
