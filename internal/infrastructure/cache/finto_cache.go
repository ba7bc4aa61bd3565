package cache

import (
	"context"
	"sync"

	"ptv/internal/domain/cloning"
	"ptv/internal/domain/finto"
	"ptv/pkg/logger"
)

// TreeLoader reads the items of one classification tree.
type TreeLoader interface {
	ListTree(ctx context.Context, kind finto.TreeKind) ([]*finto.TreeItem, error)
}

// FintoTreeCache keeps the linked classification trees in memory. Trees are
// loaded on first use; callers receive deep copies and may modify them.
type FintoTreeCache struct {
	loader TreeLoader
	cloner cloning.Cloner[finto.TreeItem]

	mu    sync.RWMutex
	roots map[finto.TreeKind][]*finto.TreeItem
}

// NewFintoTreeCache creates the cache.
func NewFintoTreeCache(loader TreeLoader, cloner cloning.Cloner[finto.TreeItem]) *FintoTreeCache {
	return &FintoTreeCache{
		loader: loader,
		cloner: cloner,
		roots:  make(map[finto.TreeKind][]*finto.TreeItem),
	}
}

// Tree returns a copy of the roots of kind, children linked.
func (c *FintoTreeCache) Tree(ctx context.Context, kind finto.TreeKind) ([]*finto.TreeItem, error) {
	c.mu.RLock()
	roots, ok := c.roots[kind]
	c.mu.RUnlock()
	if ok {
		return c.cloner.CloneCollection(roots), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if roots, ok := c.roots[kind]; ok {
		return c.cloner.CloneCollection(roots), nil
	}
	items, err := c.loader.ListTree(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.Kind = kind
	}
	roots, err = finto.LinkTree(items)
	if err != nil {
		return nil, err
	}
	c.roots[kind] = roots
	logger.Debug(ctx, "finto tree cached", "kind", kind, "items", len(items))
	return c.cloner.CloneCollection(roots), nil
}

// Invalidate drops the cached tree of kind; an empty kind drops every tree.
func (c *FintoTreeCache) Invalidate(ctx context.Context, kind finto.TreeKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == "" {
		c.roots = make(map[finto.TreeKind][]*finto.TreeItem)
		return
	}
	delete(c.roots, kind)
}

// Listen drops trees on finto_changed notifications; the payload names the kind.
func (c *FintoTreeCache) Listen(l *Listener) {
	l.On(ChannelFinto, func(ctx context.Context, payload string) {
		c.Invalidate(ctx, finto.TreeKind(payload))
	})
}
