package cyphertx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Transport issues one HTTP exchange against the endpoint and returns the
// status code and raw body. Implementations own connection pooling, TLS,
// redirects and request timeouts; the driver core never retries.
type Transport interface {
	Send(ctx context.Context, method, url string, body []byte) (int, []byte, error)
}

// HTTPTransportOptions configure the default transport.
type HTTPTransportOptions struct {
	Username string
	Password string
	// Timeout bounds each request when Client is not supplied.
	Timeout time.Duration
	// Client overrides the underlying HTTP client entirely.
	Client *http.Client
}

// HTTPTransport is the default Transport over net/http. It sends and accepts
// JSON and attaches basic auth credentials when a username is configured.
type HTTPTransport struct {
	client   *http.Client
	username string
	password string
}

// NewHTTPTransport builds the default transport.
func NewHTTPTransport(opts HTTPTransportOptions) *HTTPTransport {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{client: client, username: opts.Username, password: opts.Password}
}

func (t *HTTPTransport) Send(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return res.StatusCode, payload, nil
}

// SentRequest captures one request a MemoryTransport received.
type SentRequest struct {
	Method string
	URL    string
	Body   []byte
}

type cannedResponse struct {
	status int
	body   []byte
}

// MemoryTransport is a scripted in-memory Transport used for unit testing
// driver logic without a running server. Responses are consumed in push
// order; when the script is exhausted it answers 200 with an empty result
// document.
type MemoryTransport struct {
	mu        sync.Mutex
	calls     []SentRequest
	responses []cannedResponse
	err       error
}

// NewMemoryTransport instantiates the in-memory transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

// WithError configures the transport to fail every subsequent call with err.
func (m *MemoryTransport) WithError(err error) *MemoryTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Push appends a canned response returned by the next Send call.
func (m *MemoryTransport) Push(status int, body string) *MemoryTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, cannedResponse{status: status, body: []byte(body)})
	return m
}

func (m *MemoryTransport) Send(_ context.Context, method, url string, body []byte) (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, nil, m.err
	}

	m.calls = append(m.calls, SentRequest{
		Method: method,
		URL:    url,
		Body:   append([]byte(nil), body...),
	})

	if len(m.responses) == 0 {
		return http.StatusOK, []byte(`{"results":[],"errors":[]}`), nil
	}

	res := m.responses[0]
	m.responses = m.responses[1:]
	return res.status, res.body, nil
}

// Calls returns a snapshot of the requests sent so far.
func (m *MemoryTransport) Calls() []SentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentRequest(nil), m.calls...)
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
