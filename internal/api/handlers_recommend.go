// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/metrics"
	"github.com/ManuGH/pendel/internal/pack"
)

// RecommendRequest asks for a strategy-selected fill of the time left in a
// commute. Topic narrows the pool; empty means any topic.
type RecommendRequest struct {
	RemainingSeconds int      `json:"remainingSeconds" validate:"required,gt=0"`
	ExcludeIDs       []string `json:"excludeIds"`
	Topic            string   `json:"topic"`
}

// RecommendResponse reports the winning strategy alongside its picks.
type RecommendResponse struct {
	Items    []PlaylistItem `json:"items"`
	TotalSec int            `json:"totalSec"`
	Strategy string         `json:"strategy"`
}

// handleRecommend serves POST /api/v1/recommend: mid-ride "Up Next" fills
// for the remaining seconds. Always 200; an empty pool yields an empty
// selection, not an error.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, validationDetails(err))
		return
	}

	ctx, span := pack.StartPackSpan(r.Context())
	defer span.End()

	videos, err := s.source.Search(ctx, req.Topic)
	if err != nil {
		logger.Error().Err(err).Str("topic", req.Topic).Msg("catalog search failed")
		RespondError(w, r, http.StatusBadGateway, ErrCatalogUnavailable)
		return
	}

	excluded := make(map[string]struct{}, len(req.ExcludeIDs))
	for _, id := range req.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	pool := pack.Filter(catalog.ToCandidates(videos), pack.Request{
		Topic:       req.Topic,
		ExcludedIDs: excluded,
	})

	sel := pack.Recommend(pool, req.RemainingSeconds)

	outcome := pack.OutcomeOK
	if len(sel.Items) == 0 {
		outcome = pack.OutcomeEmptyPool
	}
	pack.EmitPackObs(ctx, pack.Obs{
		Endpoint:  "recommend",
		Outcome:   outcome,
		Strategy:  sel.Strategy,
		RequestID: log.RequestIDFromContext(ctx),
	})
	metrics.RecordPackBuilt("recommend", outcome, len(sel.Items), sel.TotalSec, req.RemainingSeconds)

	writeJSON(w, http.StatusOK, RecommendResponse{
		Items:    hydrateItems(sel.Items, catalog.IndexByID(videos)),
		TotalSec: sel.TotalSec,
		Strategy: sel.Strategy,
	})
}
