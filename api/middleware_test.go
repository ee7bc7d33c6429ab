package api

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mgdrago/anitmated-to-do-list/domain"
)

func gzipBytes(t *testing.T, payload string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(payload)); err != nil {
		t.Fatalf("compress payload: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return &buf
}

func TestGzipRequestMiddlewareDecompresses(t *testing.T) {
	store := &mockStore{task: domain.Task{ID: 1, Title: "compressed"}}
	e := newTestServer(store)
	e.Use(GzipRequestMiddleware())

	body := gzipBytes(t, `{"title":"compressed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/todos", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastInput.Title != "compressed" {
		t.Fatalf("expected decompressed body to reach the handler, got %+v", store.lastInput)
	}
}

func TestGzipRequestMiddlewareRejectsInvalidPayload(t *testing.T) {
	e := newTestServer(&mockStore{})
	e.Use(GzipRequestMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader("not gzip"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGzipRequestMiddlewarePassthrough(t *testing.T) {
	store := &mockStore{task: domain.Task{ID: 2, Title: "plain"}}
	e := newTestServer(store)
	e.Use(GzipRequestMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"title":"plain"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastInput.Title != "plain" {
		t.Fatalf("expected plain body to pass through, got %+v", store.lastInput)
	}
}

func TestDeclaresGzip(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "gzip", want: true},
		{header: "GZIP", want: true},
		{header: "deflate, gzip", want: true},
		{header: "deflate", want: false},
	}
	for _, tt := range tests {
		if got := declaresGzip(tt.header); got != tt.want {
			t.Fatalf("declaresGzip(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
