package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := New(CodeDepthExceeded, "parent_id", "category would be nested %d levels deep", 4)
	wrapped := fmt.Errorf("create category: %w", err)

	if !errors.Is(wrapped, ErrDepthExceeded) {
		t.Error("wrapped error should match ErrDepthExceeded")
	}
	if errors.Is(wrapped, ErrCycleDetected) {
		t.Error("wrapped error should not match ErrCycleDetected")
	}
	if got := CodeOf(wrapped); got != CodeDepthExceeded {
		t.Errorf("CodeOf: got %q, want %q", got, CodeDepthExceeded)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Errorf("CodeOf(plain): got %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil): got %q, want empty", got)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"with field", New(CodeInvalid, "name", "name is required"), "invalid: name is required (field name)"},
		{"without field", New(CodeNotFound, "", "category not found"), "not_found: category not found"},
		{"bare sentinel", ErrCycleDetected, "cycle_detected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:               http.StatusNotFound,
		CodeInvalid:                http.StatusBadRequest,
		CodeDepthExceeded:          http.StatusUnprocessableEntity,
		CodeCycleDetected:          http.StatusUnprocessableEntity,
		CodeInactiveReference:      http.StatusUnprocessableEntity,
		CodeDuplicateName:          http.StatusConflict,
		CodeSlugConflictExhausted:  http.StatusConflict,
		CodeConflictRetryExhausted: http.StatusConflict,
		CodeUnauthorized:           http.StatusUnauthorized,
		CodeForbidden:              http.StatusForbidden,
		CodeRateLimited:            http.StatusTooManyRequests,
		CodeInternal:               http.StatusInternalServerError,
		Code("unknown"):            http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, New(CodeDuplicateName, "name", "name %q is taken", "Web"))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var body struct {
		Error Error `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeDuplicateName || body.Error.Field != "name" || body.Error.Message != `name "Web" is taken` {
		t.Errorf("body: got %+v", body.Error)
	}
}
