// Package handlers implements the JSON endpoints for categories and jobs.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobboard/internal/apperr"
)

// page is the envelope for paginated listings.
type page[T any] struct {
	Count   int `json:"count"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Results []T `json:"results"`
}

// writeJSON sends data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// writeError sends domain errors with their mapped status. Anything else is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		apperr.Write(w, ae)
		return
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	apperr.Write(w, apperr.New(apperr.CodeInternal, "", "internal server error"))
}

// writePage slices items by p and sends the envelope.
func writePage[T any](w http.ResponseWriter, items []T, p pagination) {
	start := min(p.Offset, len(items))
	end := min(start+p.Limit, len(items))
	results := items[start:end]
	if results == nil {
		results = []T{}
	}
	writeJSON(w, http.StatusOK, page[T]{
		Count:   len(items),
		Limit:   p.Limit,
		Offset:  p.Offset,
		Results: results,
	})
}
