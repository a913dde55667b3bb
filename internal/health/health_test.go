// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/pendel/internal/config"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string                      { return m.name }
func (m *mockChecker) Check(context.Context) CheckResult { return CheckResult{Status: m.status} }

func TestNewManager(t *testing.T) {
	m := NewManager("v1.2.3")
	assert.NotNil(t, m)
	assert.Equal(t, "v1.2.3", m.version)
	assert.Empty(t, m.checkers)
}

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_WithCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	// Non-verbose liveness never runs component checks.
	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusHealthy, resp.Checks["healthy"].Status)
	assert.Equal(t, StatusDegraded, resp.Checks["degraded"].Status)
}

func TestManager_Ready_UnhealthyWins(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "ok", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "warn", status: StatusDegraded})
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	resp := m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Len(t, resp.Checks, 3)
}

func TestManager_Ready_DegradedStaysReady(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "warn", status: StatusDegraded})

	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestServeHealth_AlwaysOK(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Verbose still returns 200; the body carries the truth.
	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_503WhenUnhealthy(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
}

func TestCatalogChecker(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		state       string
		lastSuccess time.Time
		maxAge      time.Duration
		want        Status
	}{
		{name: "closed and fresh", state: "closed", lastSuccess: now, maxAge: time.Hour, want: StatusHealthy},
		{name: "open circuit", state: "open", lastSuccess: now, maxAge: time.Hour, want: StatusUnhealthy},
		{name: "half-open circuit", state: "half-open", lastSuccess: now, maxAge: time.Hour, want: StatusDegraded},
		{name: "never fetched", state: "closed", maxAge: time.Hour, want: StatusDegraded},
		{name: "stale", state: "closed", lastSuccess: now.Add(-2 * time.Hour), maxAge: time.Hour, want: StatusDegraded},
		{name: "stale but staleness disabled", state: "closed", lastSuccess: now.Add(-2 * time.Hour), want: StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalogChecker(
				func() string { return tt.state },
				func() time.Time { return tt.lastSuccess },
				tt.maxAge,
			)
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}

func TestStoreChecker(t *testing.T) {
	ok := NewStoreChecker(func(context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	down := NewStoreChecker(func(context.Context) error { return errors.New("closed") })
	result := down.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "closed", result.Error)
}

func TestDataDirChecker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusHealthy, NewDataDirChecker(dir).Check(context.Background()).Status)

	assert.Equal(t, StatusUnhealthy,
		NewDataDirChecker(filepath.Join(dir, "missing")).Check(context.Background()).Status)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	assert.Equal(t, StatusUnhealthy, NewDataDirChecker(file).Check(context.Background()).Status)
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := config.AppConfig{
		DataDir: t.TempDir(),
	}
	cfg.Catalog.BaseURL = "http://127.0.0.1:9000"
	cfg.Storage.Backend = "memory"
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	cfg.DataDir = filepath.Join(cfg.DataDir, "missing")
	err := PerformStartupChecks(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")

	cfg.DataDir = t.TempDir()
	cfg.Catalog.BaseURL = "ftp://host"
	err = PerformStartupChecks(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog base URL")
}
