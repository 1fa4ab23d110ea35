// Package catalog publishes immutable project snapshots.
//
// Readers call Current and keep the returned snapshot for the duration of
// one operation. Refresh builds the next snapshot off to the side and swaps
// it in with a single atomic store, so readers never wait on discovery and
// never observe a half-built snapshot.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/logging"
)

// Source produces the full record set for a new snapshot.
type Source interface {
	Discover(ctx context.Context) []Record
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) []Record

func (f SourceFunc) Discover(ctx context.Context) []Record { return f(ctx) }

// Catalog holds the current snapshot.
type Catalog struct {
	source  Source
	log     *logging.Logger
	current atomic.Pointer[Snapshot]

	// serializes refreshes; readers never take it
	refreshMu  sync.Mutex
	generation uint64
}

// New creates a catalog publishing an empty snapshot until the first Refresh.
func New(source Source, log *logging.Logger) *Catalog {
	c := &Catalog{source: source, log: log.Named("catalog")}
	c.current.Store(NewSnapshot(0, nil))
	return c
}

// Current returns the latest published snapshot. It never blocks.
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// Refresh re-runs discovery and publishes the result. If ctx is canceled
// before discovery finishes the previous snapshot stays current.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	records := c.source.Discover(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh canceled: %w", err)
	}

	c.generation++
	snap := NewSnapshot(c.generation, records)
	c.current.Store(snap)

	c.log.Info("published snapshot",
		zap.Uint64("generation", snap.Generation()),
		zap.Int("projects", snap.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return snap, nil
}
