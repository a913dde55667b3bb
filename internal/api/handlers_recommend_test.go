// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/pack"
)

func postJSON(t *testing.T, s *Server, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandleRecommend_EmptyPoolIs200(t *testing.T) {
	src := &stubSource{videos: nil}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", `{"remainingSeconds":600}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty pool, got %d (body %s)", rr.Code, rr.Body.String())
	}

	resp := decodeBody[RecommendResponse](t, rr)
	if len(resp.Items) != 0 {
		t.Errorf("expected no items, got %+v", resp.Items)
	}
	if resp.TotalSec != 0 {
		t.Errorf("expected totalSec 0, got %d", resp.TotalSec)
	}
	if resp.Strategy != pack.StrategyLongestFirst {
		t.Errorf("expected first-declared strategy %q, got %q", pack.StrategyLongestFirst, resp.Strategy)
	}
}

func TestHandleRecommend_OverbookCeiling(t *testing.T) {
	// Ceiling is 600 + 3% = 618; 400+218 lands exactly on it.
	src := &stubSource{videos: []catalog.Video{
		video("long", 400),
		video("short", 218),
	}}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", `{"remainingSeconds":600}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rr.Code, rr.Body.String())
	}

	resp := decodeBody[RecommendResponse](t, rr)
	if resp.TotalSec != 618 {
		t.Errorf("expected overbooked total 618, got %d", resp.TotalSec)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected both items under the overbook ceiling, got %+v", resp.Items)
	}
}

func TestHandleRecommend_NeverBeyondOverbook(t *testing.T) {
	src := &stubSource{videos: []catalog.Video{
		video("a", 300), video("b", 200), video("c", 150), video("d", 119),
	}}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", `{"remainingSeconds":600}`)

	resp := decodeBody[RecommendResponse](t, rr)
	if resp.TotalSec > 618 {
		t.Errorf("total %d exceeds 3%% overbook ceiling 618", resp.TotalSec)
	}
}

func TestHandleRecommend_ExcludesIDs(t *testing.T) {
	src := &stubSource{videos: []catalog.Video{
		video("keep", 300),
		video("skip", 300),
	}}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend",
		`{"remainingSeconds":600,"excludeIds":["skip"]}`)

	resp := decodeBody[RecommendResponse](t, rr)
	for _, it := range resp.Items {
		if it.VideoID == "skip" {
			t.Error("excluded id appeared in recommendation")
		}
	}
	if len(resp.Items) != 1 || resp.Items[0].VideoID != "keep" {
		t.Errorf("expected [keep], got %+v", resp.Items)
	}
}

func TestHandleRecommend_TopicNarrowsPool(t *testing.T) {
	rust := video("rust-1", 300)
	rust.Topic = "rust"
	src := &stubSource{videos: []catalog.Video{video("go-1", 300), rust}}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend",
		`{"remainingSeconds":600,"topic":"rust"}`)

	resp := decodeBody[RecommendResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].VideoID != "rust-1" {
		t.Errorf("expected topic-narrowed [rust-1], got %+v", resp.Items)
	}
}

func TestHandleRecommend_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty_body", ``},
		{"missing_remaining", `{}`},
		{"zero_remaining", `{"remainingSeconds":0}`},
		{"negative_remaining", `{"remainingSeconds":-60}`},
		{"unknown_field", `{"remainingSeconds":600,"bogus":true}`},
		{"malformed_json", `{"remainingSeconds":`},
	}

	src := &stubSource{videos: []catalog.Video{video("a", 300)}}
	s := newTestServer(t, src)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", tt.body)
			checkProblem(t, rr, http.StatusBadRequest, "INVALID_INPUT")
		})
	}
}

func TestHandleRecommend_CatalogFailure502(t *testing.T) {
	src := &stubSource{searchErr: errors.New("catalog down")}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", `{"remainingSeconds":600}`)
	checkProblem(t, rr, http.StatusBadGateway, "CATALOG_UNAVAILABLE")
}

func TestHandleRecommend_ReportsWinningStrategy(t *testing.T) {
	src := &stubSource{videos: []catalog.Video{video("a", 550)}}
	s := newTestServer(t, src)

	rr := postJSON(t, s, s.handleRecommend, "/api/v1/recommend", `{"remainingSeconds":600}`)

	resp := decodeBody[RecommendResponse](t, rr)
	known := map[string]bool{
		pack.StrategyLongestFirst:  true,
		pack.StrategyShortestFirst: true,
		pack.StrategyCreatorAware:  true,
		pack.StrategyRecencyFirst:  true,
	}
	if !known[resp.Strategy] {
		t.Errorf("unknown strategy %q", resp.Strategy)
	}
	// All heuristics tie on a single candidate; first declared wins.
	if resp.Strategy != pack.StrategyLongestFirst {
		t.Errorf("expected tie to go to %q, got %q", pack.StrategyLongestFirst, resp.Strategy)
	}
}
