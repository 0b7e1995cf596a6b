package cyphertx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Runner executes a single autocommit statement. Both the HTTP Client and the
// Bolt adapter satisfy it, so callers can swap protocols behind one seam.
type Runner interface {
	Exec(ctx context.Context, stmt *Statement) (*Result, error)
}

// Options configure a Client.
type Options struct {
	// URI is the base database URL the transactional endpoint hangs off,
	// e.g. http://localhost:7474/db/data.
	URI      string
	Username string
	Password string
	// Timeout bounds each HTTP request when no custom Transport is supplied.
	Timeout time.Duration
	// Transport overrides the default HTTP transport.
	Transport Transport
	// Logger receives protocol-level debug logs. Defaults to a discard
	// logger.
	Logger *slog.Logger
}

// Client is the entry point for executing Cypher statements against the
// transactional HTTP endpoint. It holds only read-only configuration and is
// safe for concurrent use; each operation issues exactly one blocking request.
type Client struct {
	transport Transport
	logger    *slog.Logger
	baseURL   string
	txURL     string
	commitURL string
}

var _ Runner = (*Client)(nil)

// New validates the options and builds a Client. No network traffic happens
// until the first operation.
func New(opts Options) (*Client, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	transport := opts.Transport
	if transport == nil {
		transport = NewHTTPTransport(HTTPTransportOptions{
			Username: opts.Username,
			Password: opts.Password,
			Timeout:  opts.Timeout,
		})
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := strings.TrimRight(opts.URI, "/")
	return &Client{
		transport: transport,
		logger:    logger,
		baseURL:   base,
		txURL:     base + "/transaction",
		commitURL: base + "/transaction/commit",
	}, nil
}

// Verify issues a GET against the base URL and reports whether the endpoint
// answers with a success status.
func (c *Client) Verify(ctx context.Context) error {
	status, body, err := c.transport.Send(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("verify endpoint: %w", err)
	}
	if status < 200 || status >= 300 {
		return &StatusError{Method: http.MethodGet, URL: c.baseURL, Status: status, Body: truncateBody(body)}
	}
	return nil
}

// Exec runs a single statement in autocommit mode and returns its result
// table. When the endpoint reports errors they are returned alongside any
// table that was still produced.
func (c *Client) Exec(ctx context.Context, stmt *Statement) (*Result, error) {
	results, err := c.ExecBatch(ctx, stmt)
	if len(results) == 0 {
		if err == nil {
			err = fmt.Errorf("endpoint returned no result table")
		}
		return nil, err
	}
	return &results[0], err
}

// ExecBatch runs an ordered statement batch in autocommit mode. The whole
// batch travels in one HTTP call and the server commits it atomically; the
// returned tables match the submission order even when the endpoint also
// reports errors.
func (c *Client) ExecBatch(ctx context.Context, stmts ...*Statement) ([]Result, error) {
	resp, err := c.post(ctx, c.commitURL, stmts, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.resultTables(), resp.endpointError()
}

// post encodes a batch, sends it, and decodes the response. Shared by the
// autocommit path and the transaction state machine.
func (c *Client) post(ctx context.Context, url string, stmts []*Statement, wantStatus int) (*wireResponse, error) {
	body, err := encodeStatements(stmts)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("posting statement batch", "url", url, "statements", len(stmts))

	status, payload, err := c.transport.Send(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if status != wantStatus {
		return nil, &StatusError{Method: http.MethodPost, URL: url, Status: status, Body: truncateBody(payload)}
	}
	return decodeResponse(payload)
}
