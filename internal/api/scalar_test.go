package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScalarHandler(t *testing.T) {
	h := ScalarHandler("/openapi.json", "ClientVet API", "Client trust scoring")

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "ClientVet API - API Reference") {
		t.Error("expected the page title to carry the API name")
	}
	if !strings.Contains(body, `data-url="/openapi.json"`) {
		t.Error("expected the spec URL to be wired into the reference script")
	}
}
