// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"

	"github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/pack"
)

const (
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20
)

// TopicsResponse carries deterministically shuffled trending topics. The
// seed is echoed so clients can page through a stable ordering.
type TopicsResponse struct {
	Topics []string `json:"topics"`
	Seed   string   `json:"seed"`
}

// handleTopicsSuggest serves GET /api/v1/topics/suggest: trending topics
// from the catalog, shuffled with a seed that defaults to the current date
// so everyone gets the same rotation per day.
func (s *Server) handleTopicsSuggest(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	seed := r.URL.Query().Get("seed")
	if seed == "" {
		seed = s.now().UTC().Format("2006-01-02")
	}

	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(w, r, http.StatusBadRequest, ErrInvalidInput, []string{"limit - positive integer"})
			return
		}
		limit = n
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	topics, err := s.source.Trending(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("catalog trending failed")
		RespondError(w, r, http.StatusBadGateway, ErrCatalogUnavailable)
		return
	}

	shuffled := pack.NewShuffler(seed).Strings(topics)
	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}

	writeJSON(w, http.StatusOK, TopicsResponse{
		Topics: shuffled,
		Seed:   seed,
	})
}
