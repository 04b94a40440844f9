package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

type mockRoute struct {
	Response *http.Response
	Body     []byte
	Err      error
	Delay    time.Duration
}

// MockTransport is a RoundTripper serving canned responses keyed by
// "METHOD /path". It counts calls per route so tests can assert how many
// network round-trips actually happened.
type MockTransport struct {
	mu     sync.Mutex
	routes map[string]mockRoute
	calls  map[string]int
}

func (m *MockTransport) AddResponse(method string, path string, status int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = mockRoute{
		Response: &http.Response{
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			StatusCode: status,
			Header:     make(http.Header),
		},
		Body: body,
	}
}

func (m *MockTransport) AddError(method string, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = mockRoute{Err: err}
}

// AddSlowResponse serves the response only after delay has passed, or the
// request context is done, whichever comes first.
func (m *MockTransport) AddSlowResponse(method string, path string, status int, body []byte, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = mockRoute{
		Response: &http.Response{
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			StatusCode: status,
			Header:     make(http.Header),
		},
		Body:  body,
		Delay: delay,
	}
}

func (m *MockTransport) Calls(method string, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method+" "+path]
}

func (m *MockTransport) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path

	m.mu.Lock()
	m.calls[key]++
	route, ok := m.routes[key]
	m.mu.Unlock()

	if route.Delay > 0 {
		select {
		case <-time.After(route.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	if route.Err != nil {
		return nil, route.Err
	}

	if !ok {
		return &http.Response{
			Status:     "404 Not Found",
			StatusCode: http.StatusNotFound,
			Header:     make(http.Header),
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Request:    req,
		}, nil
	}

	resp := *route.Response
	resp.Body = io.NopCloser(bytes.NewReader(route.Body))
	resp.ContentLength = int64(len(route.Body))
	resp.Request = req
	return &resp, nil
}

// NewMock swaps target's transport for a fresh MockTransport and returns it.
func NewMock(target *http.Client) *MockTransport {
	mock := &MockTransport{
		routes: map[string]mockRoute{},
		calls:  map[string]int{},
	}
	*target = http.Client{Transport: mock}
	return mock
}
