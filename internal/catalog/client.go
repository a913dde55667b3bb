// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/pendel/internal/cache"
	"github.com/ManuGH/pendel/internal/metrics"
	"github.com/ManuGH/pendel/internal/platform/httpx"
	platformnet "github.com/ManuGH/pendel/internal/platform/net"
	"github.com/ManuGH/pendel/internal/ratelimit"
	"github.com/ManuGH/pendel/internal/resilience"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetries    = 3
	defaultBackoff    = 500 * time.Millisecond
	defaultMaxBackoff = 8 * time.Second
	defaultCacheTTL   = 5 * time.Minute
	defaultUserAgent  = "pendel"

	pacerTarget = "catalog"
)

// Options configures the catalog client behavior.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
	UserAgent  string
	RatePerSec float64
	Burst      int
	Cache      cache.Cache
	CacheTTL   time.Duration
	Breaker    *resilience.CircuitBreaker
}

// Client implements Source against the upstream HTTP API. All entry points
// coalesce concurrent identical requests, pace outbound calls, and route
// through a circuit breaker; results are cached for the configured TTL.
type Client struct {
	base     string
	http     *http.Client
	pacer    *ratelimit.Pacer
	breaker  *resilience.CircuitBreaker
	cache    cache.Cache
	cacheTTL time.Duration
	group    singleflight.Group

	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration

	lastSuccess atomic.Int64 // unix nanos of the last successful fetch

	mu  sync.Mutex
	rnd *rand.Rand
}

var _ Source = (*Client)(nil)

// New validates the base URL and builds a client. The URL check is strict
// on purpose: a daemon that boots against a broken upstream address should
// fail at startup, not at the first commute.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := platformnet.ValidateBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: base url: %w", err)
	}
	opts = normalizeOptions(opts)

	return &Client{
		base:       base,
		http:       httpx.WithUserAgent(httpx.NewClient(opts.Timeout), opts.UserAgent),
		pacer:      ratelimit.NewPacer(ratelimit.Config{RatePerSec: opts.RatePerSec, Burst: opts.Burst}),
		breaker:    opts.Breaker,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		maxBackoff: opts.MaxBackoff,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
	}, nil
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = ratelimit.DefaultConfig().RatePerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = ratelimit.DefaultConfig().Burst
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker("catalog", 3, 30*time.Second)
	}
	return opts
}

// Search returns all catalog entries for a topic.
func (c *Client) Search(ctx context.Context, topic string) ([]Video, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(topic))
	if raw, ok := c.cache.Get(ctx, key); ok {
		var videos []Video
		if err := json.Unmarshal(raw, &videos); err == nil {
			metrics.RecordCatalogCache("hit")
			return videos, nil
		}
		// Poisoned entry: drop it and fetch live.
		c.cache.Delete(ctx, key)
	}
	metrics.RecordCatalogCache("miss")

	result, err, _ := c.group.Do(key, func() (any, error) {
		var payload struct {
			Videos []Video `json:"videos"`
		}
		params := url.Values{}
		params.Set("topic", topic)
		if err := c.fetch(ctx, "search", "/v1/videos", params, &payload); err != nil {
			return nil, err
		}
		metrics.RecordCatalogCandidates(len(payload.Videos))
		if raw, err := json.Marshal(payload.Videos); err == nil {
			c.cache.Set(ctx, key, raw, c.cacheTTL)
		}
		return payload.Videos, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Video), nil
}

// Trending returns the upstream's trending topic names.
func (c *Client) Trending(ctx context.Context) ([]string, error) {
	const key = "trending"
	if raw, ok := c.cache.Get(ctx, key); ok {
		var topics []string
		if err := json.Unmarshal(raw, &topics); err == nil {
			metrics.RecordCatalogCache("hit")
			return topics, nil
		}
		c.cache.Delete(ctx, key)
	}
	metrics.RecordCatalogCache("miss")

	result, err, _ := c.group.Do(key, func() (any, error) {
		var payload struct {
			Topics []string `json:"topics"`
		}
		if err := c.fetch(ctx, "trending", "/v1/topics/trending", nil, &payload); err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(payload.Topics); err == nil {
			c.cache.Set(ctx, key, raw, c.cacheTTL)
		}
		return payload.Topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// LastSuccess reports when the upstream last answered successfully, or the
// zero time if it never has.
func (c *Client) LastSuccess() time.Time {
	ns := c.lastSuccess.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (c *Client) fetch(ctx context.Context, operation, path string, params url.Values, v any) error {
	start := time.Now()
	err := c.breaker.Execute(ctx, func() error {
		return c.get(ctx, operation, path, params, v)
	})
	if err == nil {
		c.lastSuccess.Store(time.Now().UnixNano())
	}
	metrics.RecordCatalogRequest(operation, outcomeFor(err), time.Since(start))
	return err
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, v any) error {
	u, err := url.Parse(c.base)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.doGet(ctx, operation, u.String())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Sentinel: ErrUpstream, Operation: operation, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UpstreamError{Sentinel: ErrBadResponse, Operation: operation, Err: err}
	}
	return nil
}

// doGet performs the request with bounded retries. Only transport failures
// and 5xx responses are retried; anything else is the upstream's answer and
// gets returned as-is.
func (c *Client) doGet(ctx context.Context, operation, rawURL string) (*http.Response, error) {
	maxAttempts := c.maxRetries + 1
	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.pacer.Wait(ctx, pacerTarget); err != nil {
			return nil, wrapTransport(operation, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		retry := (err != nil || status != http.StatusOK) && attempt < maxAttempts && shouldRetry(resp, err)

		if err == nil && status < http.StatusInternalServerError {
			return resp, nil
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		lastErr = err
		lastStatus = status

		if !retry {
			break
		}
		metrics.RecordCatalogRetry(operation)

		if err := sleepWithContext(ctx, c.backoffFor(attempt)); err != nil {
			return nil, wrapTransport(operation, err)
		}
	}

	if lastErr != nil {
		return nil, wrapTransport(operation, lastErr)
	}
	return nil, &UpstreamError{Sentinel: ErrUpstream, Operation: operation, Status: lastStatus}
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return true
	}
	return false
}

// backoffFor grows quadratically with the attempt number, capped at
// maxBackoff, with up to 20% jitter on top.
func (c *Client) backoffFor(attempt int) time.Duration {
	wait := time.Duration(attempt*attempt) * c.backoff
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	jitter := time.Duration(c.randInt63n(int64(wait/5 + 1)))
	return wait + jitter
}

func (c *Client) randInt63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int63n(n)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func wrapTransport(operation string, err error) error {
	sentinel := ErrUnavailable
	var nerr net.Error
	if (errors.As(err, &nerr) && nerr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		sentinel = ErrTimeout
	}
	return &UpstreamError{Sentinel: sentinel, Operation: operation, Err: err}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
