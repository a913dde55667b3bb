// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/export"
	"github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/metrics"
	"github.com/ManuGH/pendel/internal/pack"
)

// Reason header for empty 204 responses. The body stays empty so media
// players don't choke; the header tells clients why nothing came back.
const (
	headerReason    = "X-Pendel-Reason"
	reasonEmptyPool = "empty-pool"
	reasonNoFit     = "no-fit"
)

// Commute duration bounds in seconds (5 minutes to 1 hour).
const (
	minCommuteSec = 300
	maxCommuteSec = 3600
)

// windowTolerancePct is the ± band around the requested duration.
const windowTolerancePct = 7

// PlaylistItem is one entry of a built playlist, hydrated with catalog
// presentation fields.
type PlaylistItem struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	DurationSec  int    `json:"durationSec"`
	Level        string `json:"level,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}

// PlaylistResponse is the success body of the playlist endpoints.
type PlaylistResponse struct {
	Items            []PlaylistItem `json:"items"`
	TotalDurationSec int            `json:"totalDurationSec"`
	UnderFilled      bool           `json:"underFilled"`
}

// handlePlaylist serves GET /api/playlist: a duration-fitted pack for one
// topic, sized to the commute given in durationSec.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{"topic - required"})
		return
	}

	rawDuration := r.URL.Query().Get("durationSec")
	durationSec, err := strconv.Atoi(rawDuration)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{"durationSec - integer"})
		return
	}
	if durationSec < minCommuteSec || durationSec > maxCommuteSec {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{"durationSec - between 300 and 3600"})
		return
	}

	ctx, span := pack.StartPackSpan(r.Context())
	defer span.End()

	videos, err := s.source.Search(ctx, topic)
	if err != nil {
		logger.Error().Err(err).Str("topic", topic).Msg("catalog search failed")
		RespondError(w, r, http.StatusBadGateway, ErrCatalogUnavailable)
		return
	}

	win := pack.TolerantWindow(durationSec, windowTolerancePct)

	pool := pack.Filter(catalog.ToCandidates(videos), pack.Request{Topic: topic})
	if len(pool) == 0 {
		pack.EmitPackObs(ctx, pack.Obs{
			Endpoint:  "playlist",
			Outcome:   pack.OutcomeEmptyPool,
			RequestID: log.RequestIDFromContext(ctx),
		})
		metrics.RecordPackBuilt("playlist", pack.OutcomeEmptyPool, 0, 0, win.MaxSec)
		w.Header().Set(headerReason, reasonEmptyPool)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	result, err := pack.Build(pool, win)
	if err != nil {
		logger.Error().Err(err).Int("duration_sec", durationSec).Msg("pack build failed")
		RespondError(w, r, http.StatusInternalServerError, ErrInternalServer)
		return
	}

	if len(result.Items) == 0 {
		pack.EmitPackObs(ctx, pack.Obs{
			Endpoint:  "playlist",
			Outcome:   pack.OutcomeNoFit,
			RequestID: log.RequestIDFromContext(ctx),
		})
		metrics.RecordPackBuilt("playlist", pack.OutcomeNoFit, 0, 0, win.MaxSec)
		w.Header().Set(headerReason, reasonNoFit)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	outcome := pack.OutcomeOK
	if result.UnderFilled {
		outcome = pack.OutcomeUnderFilled
	}
	pack.EmitPackObs(ctx, pack.Obs{
		Endpoint:  "playlist",
		Outcome:   outcome,
		RequestID: log.RequestIDFromContext(ctx),
	})
	metrics.RecordPackBuilt("playlist", outcome, len(result.Items), result.TotalSec, win.MaxSec)

	byID := catalog.IndexByID(videos)
	s.exportSnapshot(ctx, topic, "", result.Items, result.TotalSec, byID)

	writeJSON(w, http.StatusOK, PlaylistResponse{
		Items:            hydrateItems(result.Items, byID),
		TotalDurationSec: result.TotalSec,
		UnderFilled:      result.UnderFilled,
	})
}

// hydrateItems joins engine picks back to catalog metadata for presentation.
func hydrateItems(items []pack.Item, byID map[string]catalog.Video) []PlaylistItem {
	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		v := byID[it.ID]
		out = append(out, PlaylistItem{
			VideoID:      it.ID,
			Title:        v.Title,
			ChannelTitle: v.ChannelName,
			DurationSec:  it.DurationSec,
			Level:        v.Level,
			Thumbnail:    v.Thumbnail,
		})
	}
	return out
}

// exportSnapshot persists the built pack for byte-stable retries. Failures
// are logged and counted, never surfaced to the client.
func (s *Server) exportSnapshot(ctx context.Context, topic, strategy string, items []pack.Item, totalSec int, byID map[string]catalog.Video) {
	if s.exports == nil {
		return
	}

	snapItems := make([]export.Item, 0, len(items))
	for _, it := range items {
		v := byID[it.ID]
		snapItems = append(snapItems, export.Item{
			ID:          it.ID,
			Title:       v.Title,
			ChannelName: v.ChannelName,
			DurationSec: it.DurationSec,
			URL:         v.URL,
		})
	}

	snap := export.Snapshot{
		Topic:     topic,
		Strategy:  strategy,
		Items:     snapItems,
		TotalSec:  totalSec,
		CreatedAt: s.now().UTC(),
	}

	if err := s.exports.Write(ctx, snap); err != nil {
		logger := log.WithComponentFromContext(ctx, "api")
		logger.Warn().
			Err(err).
			Str("topic", topic).
			Msg("pack snapshot export failed")
		metrics.RecordExport("error")
		return
	}
	metrics.RecordExport("ok")
}
