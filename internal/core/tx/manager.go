// Package tx defines the unit-of-work contract used by domain services.
// One HTTP request maps to one unit of work: everything passed to
// ExecuteWriter commits together or rolls back together.
package tx

import (
	"context"
)

// Manager runs domain code inside a scoped database transaction.
// The implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// ExecuteWriter executes fn within a read-write transaction.
	// An error from fn rolls the transaction back, success commits it.
	// Nested calls reuse the transaction already stored in ctx.
	ExecuteWriter(ctx context.Context, fn func(ctx context.Context) error) error

	// ExecuteReader executes fn within a read-only transaction.
	ExecuteReader(ctx context.Context, fn func(ctx context.Context) error) error
}

// Direct is a Manager that runs fn without any transaction.
// Used by in-memory stores and tests.
type Direct struct{}

// ExecuteWriter implements Manager.
func (Direct) ExecuteWriter(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ExecuteReader implements Manager.
func (Direct) ExecuteReader(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
