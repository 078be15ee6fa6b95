package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobboard/internal/apperr"
)

// Pagination and request body limits.
const (
	defaultLimit = 20
	maxLimit     = 100
	maxBodyBytes = 64 << 10

	defaultSimilarLimit = 5
)

type pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset from q.
func parsePagination(q url.Values) (pagination, error) {
	p := pagination{Limit: defaultLimit}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return p, apperr.New(apperr.CodeInvalid, "limit", "limit must be between 1 and %d", maxLimit)
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, apperr.New(apperr.CodeInvalid, "offset", "offset must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeInvalid, "id", "%q is not a valid id", raw)
	}
	return id, nil
}

// decodeBody reads a single JSON object from the request into dst.
// Unknown fields and trailing data are rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.New(apperr.CodeInvalid, "", "request body is empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.New(apperr.CodeInvalid, "", "malformed JSON")
		case errors.As(err, &syntaxErr):
			return apperr.New(apperr.CodeInvalid, "", "malformed JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return apperr.New(apperr.CodeInvalid, typeErr.Field, "wrong type for %s", typeErr.Field)
		case errors.As(err, &maxErr):
			return apperr.New(apperr.CodeInvalid, "", "request body exceeds %d bytes", maxErr.Limit)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return apperr.New(apperr.CodeInvalid, field, "unknown field %q", field)
		default:
			return fmt.Errorf("decode request body: %w", err)
		}
	}
	if dec.More() {
		return apperr.New(apperr.CodeInvalid, "", "request body must hold a single JSON object")
	}
	return nil
}

// optionalID parses a JSON id field that may be null or absent.
func optionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalid, field, "%q is not a valid id", *raw)
	}
	return &id, nil
}
