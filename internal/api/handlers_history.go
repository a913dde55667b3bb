// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/metrics"
)

// WatchedRequest records one consumed video for a topic.
type WatchedRequest struct {
	Topic       string `json:"topic" validate:"required"`
	VideoID     string `json:"videoId" validate:"required"`
	DurationSec int    `json:"durationSec" validate:"required,gt=0"`
}

// handleHistoryWatched serves POST /api/v1/history/watched. Watched videos
// feed both mastery scoring and wizard exclusions.
func (s *Server) handleHistoryWatched(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req WatchedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, validationDetails(err))
		return
	}

	if err := s.history.MarkWatched(r.Context(), req.Topic, req.VideoID, req.DurationSec); err != nil {
		logger.Error().Err(err).
			Str("topic", req.Topic).
			Str("video_id", req.VideoID).
			Msg("history write failed")
		metrics.RecordHistoryWrite("error")
		RespondError(w, r, http.StatusInternalServerError, ErrHistoryWriteFailed)
		return
	}

	metrics.RecordHistoryWrite("ok")
	w.WriteHeader(http.StatusNoContent)
}
