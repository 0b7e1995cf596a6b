package cyphertx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
)

// TxState is the client-side mirror of the server-held transaction
// lifecycle. Committed, RolledBack and Expired are terminal.
type TxState uint8

const (
	TxOpen TxState = iota
	TxCommitted
	TxRolledBack
	TxExpired
)

func (s TxState) String() string {
	switch s {
	case TxOpen:
		return "open"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled back"
	case TxExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Transaction tracks one open server-side transaction: its URL, commit URL
// and expiry as last reported by the server. A Transaction is exclusively
// owned by the caller that began it and is not safe for concurrent use; at
// most one operation may be in flight per handle.
type Transaction struct {
	client    *Client
	id        string
	txURL     string
	commitURL string
	expiresAt time.Time
	state     TxState
}

// Begin opens a server-side transaction, optionally executing a first
// statement batch in the same call. On success it returns the handle and the
// first batch's result tables; on any failure no handle is created, though
// result tables the endpoint still produced are returned for inspection.
func (c *Client) Begin(ctx context.Context, stmts ...*Statement) (*Transaction, []Result, error) {
	resp, err := c.post(ctx, c.txURL, stmts, http.StatusCreated)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	if err := resp.endpointError(); err != nil {
		return nil, resp.resultTables(), fmt.Errorf("begin: %w", err)
	}
	if resp.Commit == "" {
		return nil, nil, fmt.Errorf("begin: endpoint returned no commit URL")
	}

	txURL := strings.TrimSuffix(resp.Commit, "/commit")
	tx := &Transaction{
		client:    c,
		id:        path.Base(txURL),
		txURL:     txURL,
		commitURL: resp.Commit,
		state:     TxOpen,
	}
	tx.refreshExpiry(resp)

	c.logger.Debug("transaction opened", "id", tx.id, "expires", tx.expiresAt)
	return tx, resp.resultTables(), nil
}

// ID returns the server-assigned transaction identifier.
func (t *Transaction) ID() string { return t.id }

// State returns the handle's current lifecycle state.
func (t *Transaction) State() TxState { return t.state }

// ExpiresAt returns the server-reported expiry of the transaction. The zero
// time means the server did not report one.
func (t *Transaction) ExpiresAt() time.Time { return t.expiresAt }

// ensureOpen guards terminal states and client-observed expiry. It never
// touches the network: operations on dead handles fail fast.
func (t *Transaction) ensureOpen(op string) error {
	switch t.state {
	case TxOpen:
	case TxExpired:
		return fmt.Errorf("%s: %w", op, ErrTransactionExpired)
	default:
		return fmt.Errorf("%s: transaction is %s: %w", op, t.state, ErrInvalidTransactionState)
	}
	if !t.expiresAt.IsZero() && time.Now().After(t.expiresAt) {
		t.state = TxExpired
		return fmt.Errorf("%s: %w", op, ErrTransactionExpired)
	}
	return nil
}

// Exec runs a statement batch inside the open transaction. Every successful
// call resets the server's idle timeout, so the handle's expiry is refreshed
// from the response. Data-level endpoint errors are returned alongside the
// produced tables and leave the transaction open.
func (t *Transaction) Exec(ctx context.Context, stmts ...*Statement) ([]Result, error) {
	if err := t.ensureOpen("exec"); err != nil {
		return nil, err
	}

	resp, err := t.client.post(ctx, t.txURL, stmts, http.StatusOK)
	if err != nil {
		if isGoneStatus(err) {
			t.state = TxExpired
			return nil, fmt.Errorf("exec: %w", ErrTransactionExpired)
		}
		return nil, fmt.Errorf("exec: %w", err)
	}
	if isTransactionGone(resp.Errors) {
		t.state = TxExpired
		return resp.resultTables(), fmt.Errorf("exec: %v: %w", resp.endpointError(), ErrTransactionExpired)
	}

	t.refreshExpiry(resp)
	return resp.resultTables(), resp.endpointError()
}

// KeepAlive resets the server's idle timeout by sending an empty statement
// batch, refreshing the handle's expiry.
func (t *Transaction) KeepAlive(ctx context.Context) error {
	_, err := t.Exec(ctx)
	return err
}

// Commit closes the transaction, optionally executing one final statement
// batch in the same call. Data errors in the final batch do not reopen the
// transaction: the handle still transitions to Committed and the errors are
// returned. A transaction-fatal error forces the Expired state instead.
func (t *Transaction) Commit(ctx context.Context, stmts ...*Statement) ([]Result, error) {
	if err := t.ensureOpen("commit"); err != nil {
		return nil, err
	}

	resp, err := t.client.post(ctx, t.commitURL, stmts, http.StatusOK)
	if err != nil {
		if isGoneStatus(err) {
			t.state = TxExpired
			return nil, fmt.Errorf("commit: %w", ErrTransactionExpired)
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	if isTransactionGone(resp.Errors) {
		t.state = TxExpired
		return resp.resultTables(), fmt.Errorf("commit: %v: %w", resp.endpointError(), ErrTransactionExpired)
	}

	t.state = TxCommitted
	t.client.logger.Debug("transaction committed", "id", t.id)
	return resp.resultTables(), resp.endpointError()
}

// Rollback discards the transaction. It is idempotent from the caller's
// perspective: when the server reports the transaction already gone, the
// desired end state holds and the handle still transitions to RolledBack.
func (t *Transaction) Rollback(ctx context.Context) error {
	if err := t.ensureOpen("rollback"); err != nil {
		return err
	}

	status, payload, err := t.client.transport.Send(ctx, http.MethodDelete, t.txURL, nil)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	switch status {
	case http.StatusOK:
		resp, err := decodeResponse(payload)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		if len(resp.Errors) > 0 && !isTransactionGone(resp.Errors) {
			t.state = TxRolledBack
			return fmt.Errorf("rollback: %w", resp.endpointError())
		}
	case http.StatusNotFound:
		// Already discarded server-side.
	default:
		return &StatusError{Method: http.MethodDelete, URL: t.txURL, Status: status, Body: truncateBody(payload)}
	}

	t.state = TxRolledBack
	t.client.logger.Debug("transaction rolled back", "id", t.id)
	return nil
}

// refreshExpiry adopts the expiry timestamp the server reported, if any. An
// unparseable timestamp is logged and ignored rather than failing the call
// that carried it.
func (t *Transaction) refreshExpiry(resp *wireResponse) {
	if resp.Transaction == nil || resp.Transaction.Expires == "" {
		return
	}
	ts, err := parseExpiry(resp.Transaction.Expires)
	if err != nil {
		t.client.logger.Warn("unparseable transaction expiry", "value", resp.Transaction.Expires, "error", err)
		return
	}
	t.expiresAt = ts
}

// expiryLayouts cover the RFC1123 shape older servers emit and the RFC3339
// shape newer ones do.
var expiryLayouts = []string{time.RFC1123, time.RFC1123Z, time.RFC3339}

func parseExpiry(value string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry timestamp %q", value)
}

func isGoneStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound
}
