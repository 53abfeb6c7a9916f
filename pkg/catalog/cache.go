package catalog

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache owns the process-wide catalog snapshot. The snapshot is loaded on
// first use, kept across queries, and dropped by Invalidate.
// It is safe for concurrent use.
type Cache struct {
	table  Table
	logger *zap.Logger
	group  singleflight.Group

	mu         sync.RWMutex
	snapshot   *Catalog
	generation uint64

	// OnLoad is called after every load attempt, if set.
	OnLoad func(err error)
}

// NewCache creates a cache over table. A nil logger disables logging.
func NewCache(table Table, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{table: table, logger: logger}
}

// Get returns the current snapshot, loading it if needed. Load errors are
// returned to every waiting caller and are not cached.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	snap, gen := c.snapshot, c.generation
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	// The generation is part of the key so a load started before an
	// invalidation is never shared with callers that arrive after it.
	// The load is detached from the caller so that one cancelled request
	// does not fail the others waiting on it.
	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		cat, err := Load(context.WithoutCancel(ctx), c.table)
		if c.OnLoad != nil {
			c.OnLoad(err)
		}
		if err != nil {
			c.logger.Warn("catalog load failed", zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.snapshot = cat
		}
		c.mu.Unlock()

		c.logger.Info("catalog loaded",
			zap.Int("rows", cat.Len()),
			zap.Int("dishes", len(cat.Foods())),
		)
		return cat, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

// Snapshot returns the cached catalog without loading, or nil.
func (c *Cache) Snapshot() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Invalidate drops the cached snapshot so the next Get reloads the table.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.generation++
	c.mu.Unlock()
	c.logger.Debug("catalog cache invalidated")
}
