// Package brent is the data-access layer for the Brent crude dashboard API.
// It mediates every fetch between consumers and the backend, applying
// response caching, request coalescing, a bounded timeout and error
// normalization, so nothing above it ever talks to the network directly.
package brent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/petrodata/brentdash/cache"
	"github.com/petrodata/brentdash/tokenstore"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:5000/api".
	BaseURL string
	// HTTPClient defaults to a plain client; production wiring passes
	// httpclient.New for prometheus instrumentation.
	HTTPClient *http.Client
	// Cacher defaults to an in-memory cacher owned by this client. The cache
	// is owned state with an explicit lifecycle, never a package singleton.
	Cacher cache.Cacher
	// Tokens resolves the optional bearer token. Nil means unauthenticated.
	Tokens tokenstore.Source
	// TTL for cached payloads. Defaults to DefaultTTL.
	TTL time.Duration
	// Timeout bounds each request end to end. Defaults to DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger

	// ExtraInterceptors run after the built-in pipeline (content type,
	// timestamp, request id, bearer token).
	ExtraInterceptors []RequestInterceptor
}

type Client struct {
	baseURL      string
	http         *http.Client
	cache        cache.Cacher
	logger       *slog.Logger
	ttl          time.Duration
	timeout      time.Duration
	interceptors []RequestInterceptor

	// flight coalesces concurrent gets for the same cache key into one
	// network call; the entry is dropped on settlement.
	flight singleflight.Group
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Cacher == nil {
		cfg.Cacher = cache.NewMemoryCacher()
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	interceptors := []RequestInterceptor{
		withContentType("application/json"),
		withTimestamp(),
		withRequestID(),
		withBearer(cfg.Tokens),
	}
	interceptors = append(interceptors, cfg.ExtraInterceptors...)

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         cfg.HTTPClient,
		cache:        cfg.Cacher,
		logger:       cfg.Logger,
		ttl:          cfg.TTL,
		timeout:      cfg.Timeout,
		interceptors: interceptors,
	}
}

// Get issues a read request for endpoint with the given query parameters.
// A live cache entry short-circuits the network entirely. Concurrent calls
// for the same key share one underlying request. Every failure comes back as
// a *Error.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, &Error{Kind: KindUnknown, Message: "endpoint must not be empty"}
	}

	key := CacheKey(endpoint, params)

	if payload, ok := c.cached(ctx, key); ok {
		c.logger.Debug("cache hit", "endpoint", endpoint, "key", key)
		return payload, nil
	}

	v, err, shared := c.flight.Do(key, func() (any, error) {
		payload, err := c.fetchJSON(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		if cacheErr := c.cache.Remember(ctx, key, payload, c.ttl); cacheErr != nil {
			c.logger.Warn("failed to cache payload", "key", key, "err", cacheErr)
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("request coalesced", "endpoint", endpoint, "key", key)
	}

	return v.(json.RawMessage), nil
}

// ClearCache deletes all cached payloads unconditionally. The next Get for
// any key is forced to hit the network.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

func (c *Client) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	v, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	switch payload := v.(type) {
	case json.RawMessage:
		return payload, true
	case []byte:
		return json.RawMessage(payload), true
	case string:
		return json.RawMessage(payload), true
	default:
		return nil, false
	}
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	status, body, err := c.roundTrip(ctx, endpoint, params)
	if err != nil {
		c.fail(endpoint, err)
		return nil, err
	}

	payload, apiErr := unwrapEnvelope(status, body)
	if apiErr != nil {
		c.fail(endpoint, apiErr)
		return nil, apiErr
	}

	return payload, nil
}

// roundTrip performs one bounded network call and returns a 2xx status and
// body, or a normalized error. A late response after the deadline is
// discarded by the transport; the caller observes exactly one terminal
// outcome.
func (c *Client) roundTrip(ctx context.Context, endpoint string, params map[string]string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(endpoint, params), nil)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}

	for _, intercept := range c.interceptors {
		if err := intercept(req); err != nil {
			return 0, nil, &Error{Kind: KindUnknown, Message: "request interceptor failed: " + err.Error()}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, nil, statusError(resp.StatusCode, serverMessage(body), body)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) requestURL(endpoint string, params map[string]string) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

// serverMessage pulls a human-readable message out of an error body when the
// server sent its usual envelope.
func serverMessage(body []byte) string {
	var env envelope
	if err := jsonCodec.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// fail emits the categorized diagnostic for a failed request. Callers still
// receive the one normalized shape regardless of category.
func (c *Client) fail(endpoint string, err error) {
	if apiErr, ok := AsError(err); ok {
		c.logger.Warn("api request failed",
			"endpoint", endpoint,
			"kind", string(apiErr.Kind),
			"status", apiErr.StatusCode,
			"message", apiErr.Message,
		)
		return
	}
	c.logger.Warn("api request failed", "endpoint", endpoint, "err", err)
}
