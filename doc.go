// Package cyphertx is a client driver for the Neo4j transactional Cypher
// HTTP endpoint. It covers typed parameter binding for statements, batched
// autocommit execution, explicit transactions driven through the
// open/execute/commit/rollback/expire protocol, and decoding of the
// endpoint's heterogeneous tabular responses into typed, by-name-addressable
// rows.
//
// Autocommit execution:
//
//	client, err := cyphertx.New(cyphertx.Options{URI: "http://localhost:7474/db/data"})
//	...
//	stmt := cyphertx.NewStatement("MATCH (n:LANG) WHERE n.safe = $safe RETURN n.name").
//		WithParam("safe", cyphertx.Bool(true))
//	result, err := client.Exec(ctx, stmt)
//	...
//	rows := result.Rows()
//	for rows.Next() {
//		var name string
//		if err := rows.Row().Get("n.name", &name); err != nil {
//			...
//		}
//	}
//
// Explicit transactions:
//
//	tx, results, err := client.Begin(ctx, cyphertx.NewStatement("CREATE (n:LANG {name:'Rust'})"))
//	...
//	results, err = tx.Exec(ctx, stmt)
//	...
//	if _, err := tx.Commit(ctx); err != nil {
//		...
//	}
//
// Execution is synchronous: each operation issues exactly one blocking HTTP
// request, with no retries or internal queuing. A Client is safe for
// concurrent use. A Transaction is not: it is owned by the caller that began
// it, and concurrent operations on one handle without external
// synchronization are undefined. Independent transactions and autocommit
// calls may run concurrently.
//
// The bolt subpackage offers an alternative Runner over the Bolt protocol
// using the official Neo4j driver, for deployments that do not expose the
// HTTP endpoint.
package cyphertx
