// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ManuGH/pendel/internal/log"
)

func TestRespondError_ProblemShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/playlist", nil)
	rr := httptest.NewRecorder()

	RespondError(rr, req, http.StatusBadRequest, ErrInvalidInput, []string{"topic - required"})

	body := checkProblem(t, rr, http.StatusBadRequest, "INVALID_INPUT")

	if body["type"] != "error/invalid_input" {
		t.Errorf("expected type error/invalid_input, got %v", body["type"])
	}
	if body["title"] != ErrInvalidInput.Message {
		t.Errorf("expected title %q, got %v", ErrInvalidInput.Message, body["title"])
	}
	if body["instance"] != "/api/playlist" {
		t.Errorf("expected instance /api/playlist, got %v", body["instance"])
	}

	details, ok := body["details"].([]any)
	if !ok || len(details) != 1 || details[0] != "topic - required" {
		t.Errorf("expected details [topic - required], got %v", body["details"])
	}
}

func TestRespondError_WithoutDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/playlist", nil)
	rr := httptest.NewRecorder()

	RespondError(rr, req, http.StatusBadGateway, ErrCatalogUnavailable)

	body := checkProblem(t, rr, http.StatusBadGateway, "CATALOG_UNAVAILABLE")
	if _, present := body["details"]; present {
		t.Errorf("expected no details key, got %v", body["details"])
	}
}

func TestRespondError_PropagatesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/playlist", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-42"))
	rr := httptest.NewRecorder()

	RespondError(rr, req, http.StatusNotFound, ErrPackNotFound)

	body := checkProblem(t, rr, http.StatusNotFound, "PACK_NOT_FOUND")
	if body["requestId"] != "req-42" {
		t.Errorf("expected requestId req-42, got %v", body["requestId"])
	}
	if got := rr.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected X-Request-ID header req-42, got %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"hello": "world"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("expected charset content type, got %s", ct)
	}

	body := decodeBody[map[string]string](t, rr)
	if body["hello"] != "world" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestAPIError_Error(t *testing.T) {
	if got := ErrUnauthorized.Error(); got != "Authentication required" {
		t.Errorf("unexpected message %q", got)
	}
}
