// Package storage defines the run-scoped state stores.
package storage

import "context"

// BlockList is the set of egress hostnames known, within the current run, to
// be rejected by the target. Add is idempotent; the set only shrinks through
// Clear.
type BlockList interface {
	Add(ctx context.Context, hostname string) error
	Contains(ctx context.Context, hostname string) (bool, error)
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
	All(ctx context.Context) ([]string, error)
}
