package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobboard/internal/authz"
)

// tokenAuthZ allows exactly one token.
type tokenAuthZ string

func (a tokenAuthZ) CanMutateCategory(_ context.Context, actor authz.Actor) bool {
	return actor.Token == string(a)
}

func TestRequireCategoryAdmin(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer letmein", http.StatusOK},
		{"scheme is case-insensitive", "bearer letmein", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"basic auth", "Basic bGV0bWVpbg==", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor authz.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor, _ = ActorFromCtx(r.Context())
			})
			handler := RequireCategoryAdmin(tokenAuthZ("letmein"))(next)

			req := httptest.NewRequest(http.MethodPost, "/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusOK && gotActor.Token != "letmein" {
				t.Errorf("actor token: got %q", gotActor.Token)
			}
			if tt.want == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry WWW-Authenticate")
			}
		})
	}
}

func TestActorFromCtxEmpty(t *testing.T) {
	if _, ok := ActorFromCtx(context.Background()); ok {
		t.Error("expected no actor in a bare context")
	}
}
