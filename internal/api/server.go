// SPDX-License-Identifier: MIT

// Package api provides the HTTP server surface of the pendel daemon.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/export"
	"github.com/ManuGH/pendel/internal/health"
	"github.com/ManuGH/pendel/internal/history"
)

// Server is the HTTP API server for pendel.
type Server struct {
	mu     sync.RWMutex
	cfg    config.AppConfig
	holder ConfigHolder

	source  catalog.Source
	history history.Store
	exports *export.Store
	health  *health.Manager

	validate  *validator.Validate
	startTime time.Time

	// now allows tests to pin the clock; defaults to time.Now.
	now func() time.Time
}

// ConfigHolder allows hot configuration reloading without import cycles.
// Implemented by config.Holder.
type ConfigHolder interface {
	Get() *config.AppConfig
	Reload(ctx context.Context) error
}

// Deps holds all dependencies for the API server.
type Deps struct {
	Source  catalog.Source
	History history.Store
	Exports *export.Store
	Health  *health.Manager
}

// New constructs the API server. Source and History are required; Exports
// and Health degrade the matching endpoints when absent.
func New(cfg config.AppConfig, deps Deps) (*Server, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("api: catalog source is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("api: history store is required")
	}

	return &Server{
		cfg:       cfg,
		source:    deps.Source,
		history:   deps.History,
		exports:   deps.Exports,
		health:    deps.Health,
		validate:  validator.New(),
		startTime: time.Now(),
		now:       time.Now,
	}, nil
}

// Handler returns the fully wired HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// currentConfig returns the active configuration under the read lock.
func (s *Server) currentConfig() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
