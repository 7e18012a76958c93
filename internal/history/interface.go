// Package history persists committed snapshots to a local SQLite
// database so state-of-charge and cell trends survive restarts.
package history

import (
	"context"

	"codeberg.org/mutker/bydmon/internal/battery"
)

type Repository interface {
	Store(ctx context.Context, snapshot *battery.Snapshot) error
	Close() error
}

// Noop satisfies Repository when history is disabled.
type Noop struct{}

func (Noop) Store(_ context.Context, _ *battery.Snapshot) error { return nil }
func (Noop) Close() error                                       { return nil }
