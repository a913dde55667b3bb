// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/ManuGH/pendel/internal/export"
	"github.com/ManuGH/pendel/internal/log"
)

// handlePacksLatest serves GET /api/v1/packs/latest: the most recently built
// pack for a topic, straight from the snapshot store.
func (s *Server) handlePacksLatest(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{"topic - required"})
		return
	}

	if s.exports == nil {
		RespondError(w, r, http.StatusNotImplemented, ErrInternalServer, []string{"snapshot store disabled"})
		return
	}

	snap, err := s.exports.Latest(topic)
	if err != nil {
		if errors.Is(err, export.ErrNoSnapshot) {
			RespondError(w, r, http.StatusNotFound, ErrPackNotFound)
			return
		}
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str("topic", topic).
			Msg("snapshot read failed")
		RespondError(w, r, http.StatusInternalServerError, ErrInternalServer)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
