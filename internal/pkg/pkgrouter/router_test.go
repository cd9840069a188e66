package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgerror"
)

type staticID struct{}

func (staticID) Generate() string { return "cid-static" }

func serve(t *testing.T, ro *Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterFileResponse(t *testing.T) {
	ro := NewRouter(staticID{})
	ro.GET("/download", func(ctx context.Context, r *http.Request) (any, error) {
		return File{Name: "Master_Final.xlsx", ContentType: "application/test", Content: []byte("abc")}, nil
	})

	rec := serve(t, ro, http.MethodGet, "/download")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/test" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=Master_Final.xlsx" {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "3" {
		t.Fatalf("unexpected length %q", got)
	}
	if rec.Body.String() != "abc" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRouterValidationErrorDetail(t *testing.T) {
	ro := NewRouter(staticID{})
	ro.POST("/runs", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, pkgerror.NewInvalidInput(errors.New("at least one file is required"))
	})

	rec := serve(t, ro, http.MethodPost, "/runs")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "validation error" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Error["detail"] != "at least one file is required" {
		t.Fatalf("unexpected detail %#v", body.Error)
	}
}

func TestRouterNoContentAndUnknownError(t *testing.T) {
	ro := NewRouter(staticID{})
	ro.DELETE("/runs/:id", func(ctx context.Context, r *http.Request) (any, error) {
		if GetParam(ctx, "id") == "boom" {
			return nil, errors.New("boom")
		}
		return nil, nil
	})

	if rec := serve(t, ro, http.MethodDelete, "/runs/r1"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec := serve(t, ro, http.MethodDelete, "/runs/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got == "" {
		t.Fatalf("expected correlation id header")
	}
}
