package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/pkg/logger"
)

// TypeLoader reads every lookup table row.
type TypeLoader interface {
	LoadTypes(ctx context.Context) ([]types.Type, error)
}

// TypesCache serves types.Cache from an immutable snapshot. Reload builds a new
// snapshot and swaps it in; readers never block.
type TypesCache struct {
	loader  TypeLoader
	current atomic.Pointer[types.Snapshot]
}

var _ types.Cache = (*TypesCache)(nil)

// NewTypesCache creates an empty cache. Call Reload before serving requests.
func NewTypesCache(loader TypeLoader) *TypesCache {
	c := &TypesCache{loader: loader}
	c.current.Store(types.NewSnapshot(nil))
	return c
}

// Reload replaces the snapshot with the current database content. On error
// the previous snapshot stays in place.
func (c *TypesCache) Reload(ctx context.Context) error {
	rows, err := c.loader.LoadTypes(ctx)
	if err != nil {
		return fmt.Errorf("load types: %w", err)
	}
	c.current.Store(types.NewSnapshot(rows))
	logger.Info(ctx, "types cache loaded", "rows", len(rows))
	return nil
}

// Listen reloads the cache on types_changed notifications.
func (c *TypesCache) Listen(l *Listener) {
	l.On(ChannelTypes, func(ctx context.Context, _ string) {
		if err := c.Reload(ctx); err != nil {
			logger.Error(ctx, "failed to reload types cache", "error", err)
		}
	})
}

// Snapshot returns the snapshot currently served.
func (c *TypesCache) Snapshot() *types.Snapshot {
	return c.current.Load()
}

// Get implements types.Cache.
func (c *TypesCache) Get(kind types.Kind, code string) (id.ID, error) {
	return c.Snapshot().Get(kind, code)
}

// Code implements types.Cache.
func (c *TypesCache) Code(kind types.Kind, typeID id.ID) (string, error) {
	return c.Snapshot().Code(kind, typeID)
}

// Has implements types.Cache.
func (c *TypesCache) Has(kind types.Kind, code string) bool {
	return c.Snapshot().Has(kind, code)
}

// Types implements types.Cache.
func (c *TypesCache) Types(kind types.Kind) []types.Type {
	return c.Snapshot().Types(kind)
}

// Codes implements types.Cache.
func (c *TypesCache) Codes(kind types.Kind) []string {
	return c.Snapshot().Codes(kind)
}
