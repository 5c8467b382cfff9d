// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package graph

import "context"

// One row of a SELECT result, keyed by variable name
type Binding map[string]string

// The set of store operations the reconciliation code depends on.
// *Client implements it against a SPARQL endpoint; tests substitute
// a scripted store.
type Store interface {
	// Run a SELECT query and return its bindings
	Select(ctx context.Context, query string) ([]Binding, error)

	// Run an ASK query and return its boolean
	Ask(ctx context.Context, query string) (bool, error)

	// Run one or more update statements as a single batch.
	// Statements are ;-joined and sent in one request so a
	// delete/insert group is applied together.
	Update(ctx context.Context, statements ...string) error
}
