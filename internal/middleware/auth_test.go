package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubValidator struct {
	id   uuid.UUID
	role string
	err  error
}

func (s *stubValidator) ValidateToken(_ context.Context, _ string) (uuid.UUID, string, error) {
	return s.id, s.role, s.err
}

// okHandler writes the authenticated user's role (for assertions).
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u := UserFromCtx(r.Context()); u != nil {
		w.Write([]byte(u.Role))
		return
	}
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestBearerAuth_ValidToken(t *testing.T) {
	id := uuid.New()
	mw := BearerAuth(&stubValidator{id: id, role: "mechanic"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	mw(okHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "mechanic" {
		t.Errorf("role from context: got %q, want mechanic", rec.Body.String())
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	mw := BearerAuth(&stubValidator{id: uuid.New()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mw(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	mw := BearerAuth(&stubValidator{err: errors.New("token is expired")})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()

	mw(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestSharedSecretAuth(t *testing.T) {
	mw := SharedSecretAuth("cron-secret")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"exact match", "Bearer cron-secret", http.StatusOK},
		{"wrong secret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("%s: status got %d, want %d", c.name, rec.Code, c.want)
		}
	}
}

func TestSharedSecretAuth_EmptySecretAlwaysRejects(t *testing.T) {
	mw := SharedSecretAuth("")
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("empty configured secret must reject: got %d", rec.Code)
	}
}
