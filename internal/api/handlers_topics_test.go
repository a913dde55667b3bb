// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandleTopicsSuggest_DefaultsSeedToDate(t *testing.T) {
	src := &stubSource{topics: []string{"go", "rust", "zig", "sql", "bash", "vim", "git"}}
	s := newTestServer(t, src)
	s.SetClock(func() time.Time {
		return time.Date(2026, 8, 23, 7, 30, 0, 0, time.UTC)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/suggest", nil)
	rr := httptest.NewRecorder()
	s.handleTopicsSuggest(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rr.Code, rr.Body.String())
	}

	resp := decodeBody[TopicsResponse](t, rr)
	if resp.Seed != "2026-08-23" {
		t.Errorf("expected date seed, got %q", resp.Seed)
	}
	if len(resp.Topics) != defaultSuggestLimit {
		t.Errorf("expected default limit %d topics, got %d", defaultSuggestLimit, len(resp.Topics))
	}
}

func TestHandleTopicsSuggest_SeedIsDeterministic(t *testing.T) {
	src := &stubSource{topics: []string{"go", "rust", "zig", "sql", "bash", "vim", "git"}}
	s := newTestServer(t, src)

	get := func() TopicsResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/suggest?seed=monday&limit=7", nil)
		rr := httptest.NewRecorder()
		s.handleTopicsSuggest(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		return decodeBody[TopicsResponse](t, rr)
	}

	first := get()
	second := get()

	if first.Seed != "monday" {
		t.Errorf("expected seed echoed, got %q", first.Seed)
	}
	if len(first.Topics) != 7 {
		t.Fatalf("expected all 7 topics, got %d", len(first.Topics))
	}
	for i := range first.Topics {
		if first.Topics[i] != second.Topics[i] {
			t.Fatalf("unstable order at %d: %s vs %s", i, first.Topics[i], second.Topics[i])
		}
	}
}

func TestHandleTopicsSuggest_LimitIsCapped(t *testing.T) {
	topics := make([]string, 30)
	for i := range topics {
		topics[i] = fmt.Sprintf("topic-%02d", i)
	}
	src := &stubSource{topics: topics}
	s := newTestServer(t, src)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/suggest?limit=50", nil)
	rr := httptest.NewRecorder()
	s.handleTopicsSuggest(rr, req)

	resp := decodeBody[TopicsResponse](t, rr)
	if len(resp.Topics) != maxSuggestLimit {
		t.Errorf("expected cap at %d topics, got %d", maxSuggestLimit, len(resp.Topics))
	}
}

func TestHandleTopicsSuggest_BadLimit(t *testing.T) {
	src := &stubSource{topics: []string{"go"}}
	s := newTestServer(t, src)

	for _, limit := range []string{"0", "-3", "abc"} {
		t.Run("limit_"+limit, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/suggest?limit="+limit, nil)
			rr := httptest.NewRecorder()
			s.handleTopicsSuggest(rr, req)

			checkProblem(t, rr, http.StatusBadRequest, "INVALID_INPUT")
		})
	}
}

func TestHandleTopicsSuggest_CatalogFailure502(t *testing.T) {
	src := &stubSource{trendErr: errors.New("catalog down")}
	s := newTestServer(t, src)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/suggest", nil)
	rr := httptest.NewRecorder()
	s.handleTopicsSuggest(rr, req)

	checkProblem(t, rr, http.StatusBadGateway, "CATALOG_UNAVAILABLE")
}
