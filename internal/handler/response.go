package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers through writeJSON / writeError, so errors from
// the API always have one shape:
//
//	{"error": "not_found", "message": "comment not found with id abc123"}
//	{"error": "validation_error", "message": "message is required", "field": "message"}
//
// The login flow is the exception: it is browser navigation, so its failures
// are redirects to /?error=<code> (see auth.go).

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rejaka/portfolio/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. The largest legitimate body is a
// 1000-character comment.
const maxBodyBytes = 16 << 10

// ErrorResponse is the error body of every JSON endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable, e.g. "not_found"
	Message string `json:"message"`         // human-readable
	Field   string `json:"field,omitempty"` // offending input, for validation errors
}

// writeJSON sends data with the given status code.
//
// Headers and status must be written before the body: once Encode calls
// w.Write, later header changes are silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status.
//
// errors.Is walks the Unwrap chain, so a service that returns
// fmt.Errorf("creating comment: %w", apperror.ValidationFailed(...)) still
// maps to 400:
//
//	outer error → *AppError → ErrValidation ✓
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Never echo raw errors: they can carry queries, hosts or file paths.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", fmt.Sprintf("request body must be %d bytes or less", maxBodyBytes))
		}
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// queryInt parses the query parameter name, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}
