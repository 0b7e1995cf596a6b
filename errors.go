package cyphertx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingURI indicates the endpoint URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")

	// ErrInvalidTransactionState indicates an operation was attempted on a
	// committed or rolled back transaction handle.
	ErrInvalidTransactionState = errors.New("transaction is no longer open")

	// ErrTransactionExpired indicates the server-side transaction no longer
	// exists, either observed from its expiry timestamp or reported by the
	// endpoint.
	ErrTransactionExpired = errors.New("transaction has expired")

	// ErrNoSuchColumn indicates a row lookup by a column name the result does
	// not contain.
	ErrNoSuchColumn = errors.New("no such column")

	// ErrColumnOutOfRange indicates a row lookup by an index outside the
	// result's column range.
	ErrColumnOutOfRange = errors.New("column index out of range")
)

// ServerError is a single error entry reported by the endpoint.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// EndpointError carries the ordered error list the endpoint returned
// alongside (or instead of) results. An endpoint error does not by itself
// close the transaction; only transaction-fatal codes do.
type EndpointError struct {
	Errors []ServerError
}

func (e *EndpointError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "endpoint error"
	case 1:
		return "endpoint error: " + e.Errors[0].Error()
	default:
		return fmt.Sprintf("endpoint returned %d errors, first: %s", len(e.Errors), e.Errors[0].Error())
	}
}

// StatusError reports a response status outside the success codes the
// protocol defines for the attempted operation.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// CoercionError reports a failed extraction of a row cell into a Go value.
// It is raised only at extraction time; decoding a response never fails on
// cell contents.
type CoercionError struct {
	Column string
	Index  int
	Target string
	cause  error
}

func (e *CoercionError) Error() string {
	where := e.Column
	if where == "" {
		where = fmt.Sprintf("index %d", e.Index)
	}
	return fmt.Sprintf("cannot coerce column %s into %s: %v", where, e.Target, e.cause)
}

func (e *CoercionError) Unwrap() error { return e.cause }

// transactionGoneMarkers are the endpoint error conditions that mean the
// server-side transaction no longer exists. Statement-level codes such as
// Statement.SyntaxError are data errors and leave the transaction open.
var transactionGoneMarkers = []string{
	"TransactionNotFound",
	"TransactionTerminated",
	"TransactionTimedOut",
	"TransactionMarkedAsFailed",
	"LockClientStopped",
}

func isTransactionGone(errs []ServerError) bool {
	for _, e := range errs {
		if !strings.Contains(e.Code, ".Transaction.") {
			continue
		}
		for _, marker := range transactionGoneMarkers {
			if strings.Contains(e.Code, marker) {
				return true
			}
		}
	}
	return false
}
