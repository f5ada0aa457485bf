// Package handler contains the HTTP handlers of the REST API.
//
// A handler parses the request (path values, query, JSON body), calls one
// service method and writes the result. Handlers hold no business rules;
// ownership checks and validation beyond request shape live in the
// service layer.
package handler

// RESPONSE HELPERS:
// Every handler writes JSON through writeJSON and every failure through
// writeError, so all endpoints share one error shape:
//
//	{"error": "not_found", "message": "board not found with id abc123"}
//	{"error": "validation_error", "message": "stream name must not be blank", "field": "stream_name"}
//
// The "error" value is apperror.Kind(err); the API client maps it back to
// the same sentinel with apperror.FromKind.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/validation"
)

// maxBodyBytes caps request bodies; no endpoint accepts anything larger.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sets headers, then the status, then the body. Headers set after
// the body starts are ignored by net/http.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

var statusByKind = map[string]int{
	"validation_error": http.StatusBadRequest,
	"unauthorized":     http.StatusUnauthorized,
	"forbidden":        http.StatusForbidden,
	"not_found":        http.StatusNotFound,
	"conflict":         http.StatusConflict,
	"rate_limited":     http.StatusTooManyRequests,
}

// writeError maps a domain error to its HTTP status. The service layer never
// sees status codes; this is the only place they are chosen.
//
// Errors that are not *apperror.AppError become a generic 500. Their text
// may contain SQL or file paths and is never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	kind := apperror.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
		kind = "internal_error"
	}
	writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads one JSON object into dst and validates it. Malformed or
// oversized bodies are validation errors, like missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return v.Validate(dst)
}

// callerID returns the authenticated user. Routes that need it are behind
// auth.RequireAuth, so a missing ID means the router is misconfigured.
func callerID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized("valid authentication required")
	}
	return id, nil
}

// pageParams reads ?limit= and ?offset=. Unparseable values count as zero
// and the service applies its defaults.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}
