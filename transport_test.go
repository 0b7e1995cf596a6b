package cyphertx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_SendsJSONAndBasicAuth(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "neo4j", user)
		assert.Equal(t, "secret", pass)

		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[],"errors":[]}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportOptions{Username: "neo4j", Password: "secret"})

	status, body, err := transport.Send(context.Background(), http.MethodPost, server.URL, []byte(`{"statements":[]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"results":[],"errors":[]}`, string(body))
	assert.JSONEq(t, `{"statements":[]}`, string(gotBody))
}

func TestHTTPTransport_OmitsContentTypeWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, ok := r.Header["Authorization"]
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportOptions{})

	status, _, err := transport.Send(context.Background(), http.MethodDelete, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestHTTPTransport_ReturnsStatusWithoutJudging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportOptions{})

	status, body, err := transport.Send(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "down", string(body))
}

func TestHTTPTransport_ConnectionError(t *testing.T) {
	transport := NewHTTPTransport(HTTPTransportOptions{})

	_, _, err := transport.Send(context.Background(), http.MethodGet, "http://127.0.0.1:1/nope", nil)
	assert.Error(t, err)
}

func TestMemoryTransport_ScriptsAndRecords(t *testing.T) {
	mt := NewMemoryTransport().
		Push(http.StatusCreated, `{"commit":"x"}`).
		Push(http.StatusOK, `{"results":[],"errors":[]}`)

	status, body, err := mt.Send(context.Background(), http.MethodPost, "http://example/transaction", []byte(`{"statements":[]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, `{"commit":"x"}`, string(body))

	status, _, err = mt.Send(context.Background(), http.MethodDelete, "http://example/transaction/1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	// Script exhausted: default empty result document.
	status, body, err = mt.Send(context.Background(), http.MethodPost, "http://example/commit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"results":[],"errors":[]}`, string(body))

	calls := mt.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "http://example/transaction", calls[0].URL)
	assert.Equal(t, http.MethodDelete, calls[1].Method)
}

func TestMemoryTransport_WithError(t *testing.T) {
	boom := errors.New("boom")
	mt := NewMemoryTransport().WithError(boom)

	_, _, err := mt.Send(context.Background(), http.MethodGet, "http://example", nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mt.Calls())
}
