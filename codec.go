package cyphertx

import (
	"encoding/json"
	"fmt"
)

// Wire shapes of the transactional endpoint. A request is a single JSON
// document carrying the whole statement batch; the server executes the batch
// atomically within one transaction step, so the batch must never be split
// across calls.
type wireStatement struct {
	Statement  string           `json:"statement"`
	Parameters map[string]Value `json:"parameters,omitempty"`
}

type wireRequest struct {
	Statements []wireStatement `json:"statements"`
}

type wireRow struct {
	Row []json.RawMessage `json:"row"`
}

type wireResult struct {
	Columns []string  `json:"columns"`
	Data    []wireRow `json:"data"`
}

type wireTxInfo struct {
	Expires string `json:"expires"`
}

type wireResponse struct {
	Results     []wireResult  `json:"results"`
	Errors      []ServerError `json:"errors"`
	Commit      string        `json:"commit"`
	Transaction *wireTxInfo   `json:"transaction"`
}

// encodeStatements serializes an ordered statement batch into the request
// body the endpoint expects. An empty batch encodes as an empty statements
// array, which the server treats as a keep-alive.
func encodeStatements(stmts []*Statement) ([]byte, error) {
	entries := make([]wireStatement, 0, len(stmts))
	for i, s := range stmts {
		if s == nil {
			return nil, fmt.Errorf("statement %d is nil", i)
		}
		entries = append(entries, wireStatement{Statement: s.text, Parameters: s.params})
	}
	return json.Marshal(wireRequest{Statements: entries})
}

// decodeResponse parses an endpoint response body. Cell values stay opaque
// raw JSON until extraction, so arbitrarily nested or non-tabular cells never
// fail here.
func decodeResponse(body []byte) (*wireResponse, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode endpoint response: %w", err)
	}
	return &resp, nil
}

// resultTables converts the decoded payload into one Result per executed
// statement, preserving submission order.
func (r *wireResponse) resultTables() []Result {
	out := make([]Result, len(r.Results))
	for i, wr := range r.Results {
		rows := make([][]json.RawMessage, len(wr.Data))
		for j, entry := range wr.Data {
			rows[j] = entry.Row
		}
		out[i] = Result{columns: wr.Columns, rows: rows}
	}
	return out
}

// endpointError returns the response's error list as an error, or nil when
// the list is empty.
func (r *wireResponse) endpointError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &EndpointError{Errors: r.Errors}
}
