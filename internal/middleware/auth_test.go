package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colocash/colocash/internal/auth"
	"github.com/colocash/colocash/internal/models"
)

func newAuthedMux(t *testing.T) (*http.ServeMux, string) {
	t.Helper()
	jm := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jm.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	authed := http.NewServeMux()
	authed.HandleFunc("GET /api/expenses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", RequireAuth(jm)(authed))
	return mux, token
}

func TestRequireAuth(t *testing.T) {
	mux, token := newAuthedMux(t)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", token, http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/expenses/e1", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// TestRequireAuth_PatternPropagation checks that the route pattern matched by
// the nested mux is visible on the outer request, so the metrics middleware
// labels authenticated requests with the full route instead of "/api/".
func TestRequireAuth_PatternPropagation(t *testing.T) {
	mux, token := newAuthedMux(t)

	var gotPattern string
	outer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		gotPattern = r.Pattern
	})

	r := httptest.NewRequest(http.MethodGet, "/api/expenses/e1", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	outer.ServeHTTP(httptest.NewRecorder(), r)

	if want := "GET /api/expenses/{id}"; gotPattern != want {
		t.Errorf("pattern = %q, want %q", gotPattern, want)
	}
}
