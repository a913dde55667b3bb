// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/metrics"
	"github.com/ManuGH/pendel/internal/pack"
)

// WizardRequest is the one-shot commute setup: topic, ride length, and
// optional vibe/difficulty preferences.
type WizardRequest struct {
	Topic              string `json:"topic" validate:"required"`
	CommuteDurationSec int    `json:"commuteDurationSec" validate:"required,gte=300,lte=3600"`
	Vibe               string `json:"vibe"`
	Difficulty         string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// WizardDifficulty reports how mastery adjusted the requested level.
type WizardDifficulty struct {
	Requested    string `json:"requested"`
	Effective    string `json:"effective"`
	Adjusted     bool   `json:"adjusted"`
	MasteryScore int    `json:"masteryScore"`
}

// WizardResponse is a playlist plus the difficulty decision that shaped it.
type WizardResponse struct {
	Items            []PlaylistItem   `json:"items"`
	TotalDurationSec int              `json:"totalDurationSec"`
	UnderFilled      bool             `json:"underFilled"`
	Difficulty       WizardDifficulty `json:"difficulty"`
}

// handleWizard serves POST /api/v1/wizard/playlist: history-aware pack
// building with mastery-adjusted difficulty and seeded variety.
func (s *Server) handleWizard(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req WizardRequest
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

	// History degrades gracefully: a broken store means score 0 and no
	// exclusions, never a failed wizard.
	masteryScore, err := s.history.MasteryScore(ctx, req.Topic)
	if err != nil {
		logger.Warn().Err(err).Str("topic", req.Topic).Msg("mastery score unavailable, assuming 0")
		masteryScore = 0
	}

	watched, err := s.history.Watched(ctx, req.Topic)
	if err != nil {
		logger.Warn().Err(err).Str("topic", req.Topic).Msg("watch history unavailable, no exclusions")
		watched = nil
	}

	base, ok := pack.ParseLevel(req.Difficulty)
	if !ok {
		base = pack.LevelBeginner
	}

	cfg := s.currentConfig()
	effective := pack.Adjust(base, masteryScore, pack.Thresholds{
		FirstBumpAt:  cfg.Mastery.FirstBumpAt,
		SecondBumpAt: cfg.Mastery.SecondBumpAt,
	})
	adjusted := effective != base
	if adjusted {
		metrics.RecordDifficultyAdjustment(base.String(), effective.String())
	}

	videos, err := s.source.Search(ctx, req.Topic)
	if err != nil {
		logger.Error().Err(err).Str("topic", req.Topic).Msg("catalog search failed")
		RespondError(w, r, http.StatusBadGateway, ErrCatalogUnavailable)
		return
	}
	cands := catalog.ToCandidates(videos)

	win := pack.TolerantWindow(req.CommuteDurationSec, windowTolerancePct)

	// Strict difficulty first; relax to any level when that empties the pool.
	pool := pack.Filter(cands, pack.Request{
		Topic:       req.Topic,
		Level:       effective,
		LevelStrict: true,
		ExcludedIDs: watched,
	})
	if len(pool) == 0 {
		pool = pack.Filter(cands, pack.Request{
			Topic:       req.Topic,
			ExcludedIDs: watched,
		})
	}
	if len(pool) == 0 {
		pack.EmitPackObs(ctx, pack.Obs{
			Endpoint:  "wizard",
			Outcome:   pack.OutcomeEmptyPool,
			RequestID: log.RequestIDFromContext(ctx),
		})
		metrics.RecordPackBuilt("wizard", pack.OutcomeEmptyPool, 0, 0, win.MaxSec)
		w.Header().Set(headerReason, reasonEmptyPool)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Same topic+vibe always yields the same ride; a different vibe reorders
	// the pool, and the order-aware builder lets that flip equal-duration ties.
	pool = pack.NewShuffler(req.Topic + "|" + req.Vibe).Candidates(pool)

	result, err := pack.BuildOrdered(pool, win)
	if err != nil {
		logger.Error().Err(err).Int("duration_sec", req.CommuteDurationSec).Msg("pack build failed")
		RespondError(w, r, http.StatusInternalServerError, ErrInternalServer)
		return
	}

	if len(result.Items) == 0 {
		pack.EmitPackObs(ctx, pack.Obs{
			Endpoint:  "wizard",
			Outcome:   pack.OutcomeNoFit,
			RequestID: log.RequestIDFromContext(ctx),
		})
		metrics.RecordPackBuilt("wizard", pack.OutcomeNoFit, 0, 0, win.MaxSec)
		w.Header().Set(headerReason, reasonNoFit)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	outcome := pack.OutcomeOK
	if result.UnderFilled {
		outcome = pack.OutcomeUnderFilled
	}
	pack.EmitPackObs(ctx, pack.Obs{
		Endpoint:  "wizard",
		Outcome:   outcome,
		RequestID: log.RequestIDFromContext(ctx),
	})
	metrics.RecordPackBuilt("wizard", outcome, len(result.Items), result.TotalSec, win.MaxSec)

	byID := catalog.IndexByID(videos)
	s.exportSnapshot(ctx, req.Topic, "", result.Items, result.TotalSec, byID)

	writeJSON(w, http.StatusOK, WizardResponse{
		Items:            hydrateItems(result.Items, byID),
		TotalDurationSec: result.TotalSec,
		UnderFilled:      result.UnderFilled,
		Difficulty: WizardDifficulty{
			Requested:    base.String(),
			Effective:    effective.String(),
			Adjusted:     adjusted,
			MasteryScore: masteryScore,
		},
	})
}
