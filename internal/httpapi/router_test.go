package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterOpts{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRouterUnknownAPIRoute(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var got failEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "fail" {
		t.Fatalf("unexpected envelope status: %s", got.Status)
	}
	if !strings.Contains(got.Message, "/api/v1/nope") {
		t.Fatalf("unexpected message: %s", got.Message)
	}
}

func TestRouterHealthz(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestRouterProtectedRouteRejectsAnonymous(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/getFriends", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
