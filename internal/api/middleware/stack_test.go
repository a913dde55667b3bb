// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStack_RecoversFromPanic(t *testing.T) {
	r := NewRouter(StackConfig{})

	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q: %v", w.Body.String(), err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("unexpected error field: %v", body["error"])
	}
	if _, ok := body["requestId"]; !ok {
		t.Error("expected requestId in panic response")
	}
}

func TestStack_IssuesRequestID(t *testing.T) {
	r := NewRouter(StackConfig{})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Error("expected X-Request-ID header on response")
	}
}

func TestStack_EchoesInboundRequestID(t *testing.T) {
	r := NewRouter(StackConfig{})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("expected inbound request id to be echoed, got %q", got)
	}
}

func TestStack_SecurityHeaders(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   DefaultCSP,
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": DefaultCSP,
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}

	// No HSTS over plain HTTP
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS over plain HTTP, got %q", got)
	}
}

func TestStack_CORSPreflight(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"http://app.local"},
	})

	r.Post("/api/v1/wizard/playlist", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard/playlist", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.local" {
		t.Errorf("expected Access-Control-Allow-Origin to echo origin, got %q", got)
	}
}

func TestStack_CORSDisallowedOrigin(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"http://app.local"},
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Origin for disallowed origin, got %q", got)
	}
}

func TestStack_FullStackServes(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableCORS:            true,
		EnableSecurityHeaders: true,
		CSP:                   DefaultCSP,
		EnableMetrics:         true,
		TracingService:        "test-stack",
		EnableLogging:         true,
		EnableRateLimit:       true,
		RequestsPerMinute:     100,
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 through full stack, got %d", w.Code)
	}
	if w.Body.String() != "pong" {
		t.Errorf("expected body pong, got %q", w.Body.String())
	}
}
