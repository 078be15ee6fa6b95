// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the user-visible error type shared by the category
// tree, the filter engine and the HTTP layer. Every error carries a stable
// code, a human-readable message and, where it applies, the offending field.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeCycleDetected          Code = "cycle_detected"
	CodeDepthExceeded          Code = "depth_exceeded"
	CodeDuplicateName          Code = "duplicate_name"
	CodeSlugConflictExhausted  Code = "slug_conflict_exhausted"
	CodeInactiveReference      Code = "inactive_reference"
	CodeNotFound               Code = "not_found"
	CodeConflictRetryExhausted Code = "conflict_retry_exhausted"
	CodeInvalid                Code = "invalid"

	// Transport-level codes produced by the HTTP layer only.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"
)

// Sentinels for use with errors.Is. Matching compares codes only.
var (
	ErrCycleDetected          = &Error{Code: CodeCycleDetected}
	ErrDepthExceeded          = &Error{Code: CodeDepthExceeded}
	ErrDuplicateName          = &Error{Code: CodeDuplicateName}
	ErrSlugConflictExhausted  = &Error{Code: CodeSlugConflictExhausted}
	ErrInactiveReference      = &Error{Code: CodeInactiveReference}
	ErrNotFound               = &Error{Code: CodeNotFound}
	ErrConflictRetryExhausted = &Error{Code: CodeConflictRetryExhausted}
	ErrInvalid                = &Error{Code: CodeInvalid}
)

// Error is a domain error returned to callers unchanged.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// New builds an Error with a formatted message.
func New(code Code, field, format string, args ...any) *Error {
	return &Error{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps an error code to the status the HTTP layer responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeCycleDetected, CodeDepthExceeded, CodeInactiveReference:
		return http.StatusUnprocessableEntity
	case CodeDuplicateName, CodeSlugConflictExhausted, CodeConflictRetryExhausted:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Write sends e as a JSON error body with the status its code maps to.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(HTTPStatus(e.Code))
	body := struct {
		Error *Error `json:"error"`
	}{e}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write error response", "code", e.Code, "error", err)
	}
}
