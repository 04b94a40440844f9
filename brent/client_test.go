package brent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/petrodata/brentdash/httpclient"
	"github.com/petrodata/brentdash/tokenstore"
)

func newTestClient(t *testing.T, cfg Config) (*Client, *httpclient.MockTransport) {
	t.Helper()

	hc := &http.Client{}
	mock := httpclient.NewMock(hc)

	cfg.BaseURL = "http://api.test/api"
	cfg.HTTPClient = hc
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(testWriter{t}, nil))
	}

	return New(cfg), mock
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func okEnvelope(data string) []byte {
	return []byte(fmt.Sprintf(`{"success":true,"data":%s,"message":"ok"}`, data))
}

func TestGetCachesWithinTTL(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/prices", 200, okEnvelope(`{"data":[{"date":"2020-01-02","price":66.25}]}`))

	first, err := c.Get(context.Background(), "/prices", nil)
	is.NoErr(err)

	second, err := c.Get(context.Background(), "/prices", nil)
	is.NoErr(err)

	is.Equal(string(first), string(second))
	is.Equal(mock.Calls("GET", "/api/prices"), 1) // second call served from cache
}

func TestClearCacheForcesNetwork(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/metrics", 200, okEnvelope(`{"regimes":{"Neutral":10}}`))

	_, err := c.Get(context.Background(), "/metrics", nil)
	is.NoErr(err)
	is.NoErr(c.ClearCache(context.Background()))

	_, err = c.Get(context.Background(), "/metrics", nil)
	is.NoErr(err)

	is.Equal(mock.Calls("GET", "/api/metrics"), 2)
}

func TestEventsScenario(t *testing.T) {
	// GET /events?category=Geopolitical&min_impact=High twice inside the TTL,
	// then clearCache, then once more: exactly two network calls total.
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/events", 200, okEnvelope(`{"data":[],"count":0}`))

	params := map[string]string{"category": "Geopolitical", "min_impact": "High"}

	_, err := c.Get(context.Background(), "/events", params)
	is.NoErr(err)
	_, err = c.Get(context.Background(), "/events", params)
	is.NoErr(err)
	is.Equal(mock.Calls("GET", "/api/events"), 1)

	is.NoErr(c.ClearCache(context.Background()))

	_, err = c.Get(context.Background(), "/events", params)
	is.NoErr(err)
	is.Equal(mock.Calls("GET", "/api/events"), 2)
}

func TestParamOrderHitsSameCacheEntry(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/events", 200, okEnvelope(`{"count":0}`))

	_, err := c.Get(context.Background(), "/events", map[string]string{"a": "1", "b": "2"})
	is.NoErr(err)
	_, err = c.Get(context.Background(), "/events", map[string]string{"b": "2", "a": "1"})
	is.NoErr(err)

	is.Equal(mock.Calls("GET", "/api/events"), 1)
}

func TestTimeoutIsNeverUnknown(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{Timeout: 30 * time.Millisecond})
	mock.AddSlowResponse("GET", "/api/prices", 200, okEnvelope(`{}`), 500*time.Millisecond)

	_, err := c.Get(context.Background(), "/prices", nil)

	apiErr, ok := AsError(err)
	is.True(ok)
	is.Equal(apiErr.Kind, KindTimeout)
	is.True(apiErr.Message != "")
}

func TestSuccessFalseWithTwoHundredIsError(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/prices", 200,
		[]byte(`{"success":false,"data":null,"message":"Failed to retrieve prices","error":"boom"}`))

	_, err := c.Get(context.Background(), "/prices", nil)

	apiErr, ok := AsError(err)
	is.True(ok)
	is.Equal(apiErr.Kind, KindServerError)
	is.Equal(apiErr.Message, "Failed to retrieve prices")

	// a failed fetch must not populate the cache
	_, err = c.Get(context.Background(), "/prices", nil)
	is.True(err != nil)
	is.Equal(mock.Calls("GET", "/api/prices"), 2)
}

func TestNotFoundNormalization(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/events/unknown", 404,
		[]byte(`{"success":false,"data":null,"message":"Resource not found","error":"404"}`))

	_, err := c.Get(context.Background(), "/events/unknown", nil)

	apiErr, ok := AsError(err)
	is.True(ok)
	is.Equal(apiErr.Kind, KindNotFound)
	is.Equal(apiErr.StatusCode, 404)
	is.True(apiErr.Message != "")
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindNotFound},
		{500, KindServerError},
		{503, KindServerError},
		{418, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			is := is.New(t)
			c, mock := newTestClient(t, Config{})
			mock.AddResponse("GET", "/api/health", tc.status, []byte(`{"success":false,"message":"nope"}`))

			_, err := c.Get(context.Background(), "/health", nil)

			apiErr, ok := AsError(err)
			is.True(ok)
			is.Equal(apiErr.Kind, tc.kind)
			is.Equal(apiErr.StatusCode, tc.status)
		})
	}
}

func TestNetworkUnreachable(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddError("GET", "/api/health", fmt.Errorf("dial tcp: connection refused"))

	_, err := c.Get(context.Background(), "/health", nil)

	apiErr, ok := AsError(err)
	is.True(ok)
	is.Equal(apiErr.Kind, KindNetworkUnreachable)
	is.Equal(apiErr.StatusCode, 0)
}

func TestConcurrentGetsCoalesce(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddSlowResponse("GET", "/api/change-points", 200, okEnvelope(`{"data":[],"count":0}`), 50*time.Millisecond)

	var wg sync.WaitGroup
	results := make([]json.RawMessage, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), "/change-points", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		is.NoErr(err)
	}

	is.Equal(mock.TotalCalls(), 1) // coalesced into one round-trip
	for _, payload := range results {
		is.Equal(string(payload), string(results[0]))
	}
}

func TestExportBlobBypassesCache(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})
	mock.AddResponse("GET", "/api/export/prices", 200, []byte("Date,Price\n20-May-87,18.63\n"))

	first, err := c.ExportBlob(context.Background(), "prices", "csv")
	is.NoErr(err)
	is.Equal(string(first), "Date,Price\n20-May-87,18.63\n")

	_, err = c.ExportBlob(context.Background(), "prices", "csv")
	is.NoErr(err)

	is.Equal(mock.Calls("GET", "/api/export/prices"), 2) // no caching for exports
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	is := is.New(t)

	seen := make(chan string, 2)
	c, mock := newTestClient(t, Config{
		Tokens: tokenstore.Static("sekret"),
		ExtraInterceptors: []RequestInterceptor{
			func(req *http.Request) error {
				seen <- req.Header.Get("Authorization")
				return nil
			},
		},
	})
	mock.AddResponse("GET", "/api/health", 200, okEnvelope(`{"status":"healthy"}`))

	_, err := c.Get(context.Background(), "/health", nil)
	is.NoErr(err)
	is.Equal(<-seen, "Bearer sekret")
}

func TestNoTokenStillSendsRequest(t *testing.T) {
	is := is.New(t)

	seen := make(chan http.Header, 1)
	c, mock := newTestClient(t, Config{
		ExtraInterceptors: []RequestInterceptor{
			func(req *http.Request) error {
				seen <- req.Header.Clone()
				return nil
			},
		},
	})
	mock.AddResponse("GET", "/api/health", 200, okEnvelope(`{"status":"healthy"}`))

	_, err := c.Get(context.Background(), "/health", nil)
	is.NoErr(err)

	headers := <-seen
	is.Equal(headers.Get("Authorization"), "")
	is.Equal(headers.Get("Content-Type"), "application/json")
	is.True(headers.Get("X-Request-Id") != "")
	is.True(headers.Get("X-Request-Timestamp") != "")
}

func TestEmptyEndpointRejected(t *testing.T) {
	is := is.New(t)
	c, _ := newTestClient(t, Config{})

	_, err := c.Get(context.Background(), "", nil)

	apiErr, ok := AsError(err)
	is.True(ok)
	is.Equal(apiErr.Kind, KindUnknown)
}

func TestTypedEndpoints(t *testing.T) {
	is := is.New(t)
	c, mock := newTestClient(t, Config{})

	mock.AddResponse("GET", "/api/health", 200,
		okEnvelope(`{"status":"healthy","service":"Brent Oil API","version":"1.0.0","data_loaded":true,"records_count":9011,"events_count":5}`))
	mock.AddResponse("GET", "/api/events", 200,
		okEnvelope(`{"data":[{"id":"event_0","name":"Gulf War","date":"1990-08-02","category":"Geopolitical","impact_magnitude":"Very High","severity":4}],"count":1,"categories":["Geopolitical"],"impact_levels":["Low","Medium","High","Very High"]}`))

	h, err := c.Health(context.Background())
	is.NoErr(err)
	is.Equal(h.Status, "healthy")
	is.Equal(h.RecordsCount, 9011)

	events, err := c.Events(context.Background(), EventFilter{Category: "Geopolitical", MinImpact: "High"})
	is.NoErr(err)
	is.Equal(events.Count, 1)
	is.Equal(events.Data[0].Name, "Gulf War")
	is.Equal(events.Data[0].Severity, 4)
}
