// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CatalogChecker reports on the upstream catalog: an open circuit is
// unhealthy, a probing one degraded, and a stale last success degraded
// even while the circuit is closed.
type CatalogChecker struct {
	state       func() string
	lastSuccess func() time.Time
	maxAge      time.Duration
}

// NewCatalogChecker builds a checker from the client's state accessors.
// maxAge <= 0 disables the staleness check.
func NewCatalogChecker(state func() string, lastSuccess func() time.Time, maxAge time.Duration) *CatalogChecker {
	return &CatalogChecker{state: state, lastSuccess: lastSuccess, maxAge: maxAge}
}

func (c *CatalogChecker) Name() string { return "catalog" }

func (c *CatalogChecker) Check(context.Context) CheckResult {
	switch state := c.state(); state {
	case "open":
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  "circuit breaker open",
		}
	case "half-open":
		return CheckResult{
			Status:  StatusDegraded,
			Message: "circuit breaker probing",
		}
	}

	last := c.lastSuccess()
	if last.IsZero() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "no successful fetch yet",
		}
	}
	if c.maxAge > 0 {
		if age := time.Since(last); age > c.maxAge {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("last successful fetch %s ago", age.Round(time.Second)),
			}
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "upstream reachable"}
}

// StoreChecker pings the history store.
type StoreChecker struct {
	ping func(ctx context.Context) error
}

// NewStoreChecker builds a checker around the store's Ping.
func NewStoreChecker(ping func(ctx context.Context) error) *StoreChecker {
	return &StoreChecker{ping: ping}
}

func (c *StoreChecker) Name() string { return "history_store" }

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "store reachable"}
}

// DataDirChecker verifies the data directory is writable by creating and
// removing a probe file. Snapshot exports silently stop working otherwise.
type DataDirChecker struct {
	path string
}

// NewDataDirChecker builds a checker for the configured data directory.
func NewDataDirChecker(path string) *DataDirChecker {
	return &DataDirChecker{path: path}
}

func (c *DataDirChecker) Name() string { return "data_dir" }

func (c *DataDirChecker) Check(context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "not a directory", Message: c.path}
	}

	probe := filepath.Join(c.path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: "not writable: " + err.Error(), Message: c.path}
	}
	_ = os.Remove(probe)

	return CheckResult{Status: StatusHealthy, Message: "writable"}
}
