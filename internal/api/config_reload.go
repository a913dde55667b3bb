// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/log"
)

// SetConfigHolder wires the reload-capable config source. Without one the
// reload endpoint answers 501.
func (s *Server) SetConfigHolder(holder ConfigHolder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holder = holder
}

// ApplyConfig swaps the active configuration. Slice fields are deep-copied
// so later mutation through the holder cannot alias into the server.
func (s *Server) ApplyConfig(cfg config.AppConfig) {
	if len(cfg.Warm.Topics) > 0 {
		topics := make([]string, len(cfg.Warm.Topics))
		copy(topics, cfg.Warm.Topics)
		cfg.Warm.Topics = topics
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// handleConfigReload serves POST /api/v1/config/reload: re-read the config
// sources and apply what can change at runtime.
func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	holder := s.holder
	oldCfg := s.cfg
	s.mu.RUnlock()

	if holder == nil {
		RespondError(w, r, http.StatusNotImplemented, ErrReloadUnavailable)
		return
	}

	if err := holder.Reload(r.Context()); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "config")
		logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
		RespondError(w, r, http.StatusBadRequest, ErrReloadFailed, []string{err.Error()})
		return
	}

	newCfg := holder.Get()
	if newCfg == nil {
		RespondError(w, r, http.StatusInternalServerError, ErrInternalServer)
		return
	}
	s.ApplyConfig(*newCfg)

	writeJSON(w, http.StatusOK, struct {
		RestartRequired bool `json:"restartRequired"`
	}{
		RestartRequired: reloadRequiresRestart(oldCfg, *newCfg),
	})
}

// reloadRequiresRestart reports whether a changed field only takes effect
// after a process restart: the listen address, storage locations and
// backends, and the telemetry pipeline are bound at startup.
func reloadRequiresRestart(oldCfg, newCfg config.AppConfig) bool {
	switch {
	case oldCfg.Listen != newCfg.Listen:
		return true
	case oldCfg.DataDir != newCfg.DataDir:
		return true
	case oldCfg.Storage.Backend != newCfg.Storage.Backend:
		return true
	case oldCfg.Cache.RedisAddr != newCfg.Cache.RedisAddr:
		return true
	case oldCfg.OTLP != newCfg.OTLP:
		return true
	}
	return false
}
