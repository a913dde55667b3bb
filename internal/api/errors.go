// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ManuGH/pendel/internal/api/problem"
	"github.com/ManuGH/pendel/internal/log"
)

// writeJSON writes a JSON response with the given status code.
// If encoding fails, headers are already sent so the status code cannot
// change; the failure is logged instead.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.Base()
		logger.Error().
			Err(err).
			Int("status", code).
			Msg("failed to encode JSON response - client may receive partial data")
	}
}

// APIError pairs a stable machine-readable code with a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common API error definitions
var (
	// Authentication errors
	ErrUnauthorized = &APIError{
		Code:    "UNAUTHORIZED",
		Message: "Authentication required",
	}

	// Validation errors
	ErrInvalidInput = &APIError{
		Code:    "INVALID_INPUT",
		Message: "Invalid input parameters",
	}

	// Upstream errors
	ErrCatalogUnavailable = &APIError{
		Code:    "CATALOG_UNAVAILABLE",
		Message: "The video catalog failed to provide the requested data",
	}

	// Resource errors
	ErrPackNotFound = &APIError{
		Code:    "PACK_NOT_FOUND",
		Message: "No saved pack for this topic",
	}

	// Operation errors
	ErrHistoryWriteFailed = &APIError{
		Code:    "HISTORY_WRITE_FAILED",
		Message: "Failed to record watch history",
	}
	ErrReloadFailed = &APIError{
		Code:    "RELOAD_FAILED",
		Message: "Configuration reload failed",
	}
	ErrReloadUnavailable = &APIError{
		Code:    "RELOAD_UNAVAILABLE",
		Message: "Configuration reload is not available",
	}

	// Generic errors
	ErrInternalServer = &APIError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "An internal error occurred",
	}
)

// RespondError sends a structured RFC 7807 error response to the client.
// The request ID is extracted from the context automatically.
func RespondError(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *APIError, details ...any) {
	var d any
	if len(details) > 0 {
		d = details[0]
	}

	// title = Message (human), code = Code (machine), type = prefixed code
	problemType := "error/" + strings.ToLower(apiErr.Code)

	extra := make(map[string]any)
	if d != nil {
		extra["details"] = d
	}

	problem.Write(w, r, statusCode, problemType, apiErr.Message, apiErr.Code, "", extra)
}
