// Package bolt executes Cypher statements over the Bolt protocol using the
// official Neo4j driver, as an alternative to the transactional HTTP
// endpoint. It satisfies cyphertx.Runner so callers can swap protocols
// without touching statement construction or result handling.
package bolt

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vanshika/cyphertx"
)

// Options configure the Bolt-backed client.
type Options struct {
	// URI is a bolt:// or neo4j:// connection URI.
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// Client executes autocommit statements over Bolt, one session per call.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ cyphertx.Runner = (*Client)(nil)

// Connect establishes a Bolt connection and verifies it is usable.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if opts.URI == "" {
		return nil, cyphertx.ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create bolt driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify bolt connectivity: %w", err)
	}

	return &Client{driver: driver, database: opts.Database}, nil
}

// Exec runs one statement in its own write session and materializes the
// records into a cyphertx.Result so row extraction works identically to the
// HTTP path.
func (c *Client) Exec(ctx context.Context, stmt *cyphertx.Statement) (*cyphertx.Result, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, stmt.Text(), stmt.ParamsAny())
	if err != nil {
		return nil, err
	}

	return collectResult(ctx, res)
}

// Verify reports whether the Bolt connection is still usable.
func (c *Client) Verify(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func collectResult(ctx context.Context, res neo4j.ResultWithContext) (*cyphertx.Result, error) {
	var columns []string
	var rows [][]any
	for res.Next(ctx) {
		rec := res.Record()
		if columns == nil {
			columns = rec.Keys
		}
		row := make([]any, len(rec.Keys))
		for i, key := range rec.Keys {
			value, _ := rec.Get(key)
			row[i] = value
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if columns == nil {
		if keys, err := res.Keys(); err == nil {
			columns = keys
		}
	}
	return cyphertx.BuildResult(columns, rows)
}
