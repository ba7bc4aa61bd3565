package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/pkg/logger"
)

// OrganizationNode is one organization root in the hierarchy.
type OrganizationNode struct {
	RootID   id.ID  `db:"unific_root_id"`
	ParentID *id.ID `db:"parent_id"`
	Name     string `db:"name"`
}

// IsMain reports whether the node has no parent.
func (n OrganizationNode) IsMain() bool {
	return n.ParentID == nil
}

// OrganizationLoader reads the current hierarchy, one node per live root.
type OrganizationLoader interface {
	LoadOrganizationTree(ctx context.Context) ([]OrganizationNode, error)
}

type orgTree struct {
	nodes    map[id.ID]OrganizationNode
	children map[id.ID][]id.ID
}

func newOrgTree(nodes []OrganizationNode) *orgTree {
	t := &orgTree{
		nodes:    make(map[id.ID]OrganizationNode, len(nodes)),
		children: make(map[id.ID][]id.ID),
	}
	for _, n := range nodes {
		t.nodes[n.RootID] = n
		if n.ParentID != nil {
			t.children[*n.ParentID] = append(t.children[*n.ParentID], n.RootID)
		}
	}
	return t
}

// OrganizationTreeCache answers hierarchy questions from an immutable snapshot.
type OrganizationTreeCache struct {
	loader  OrganizationLoader
	current atomic.Pointer[orgTree]
}

// NewOrganizationTreeCache creates an empty cache. Call Reload before serving requests.
func NewOrganizationTreeCache(loader OrganizationLoader) *OrganizationTreeCache {
	c := &OrganizationTreeCache{loader: loader}
	c.current.Store(newOrgTree(nil))
	return c
}

// Reload replaces the snapshot with the current database content.
func (c *OrganizationTreeCache) Reload(ctx context.Context) error {
	nodes, err := c.loader.LoadOrganizationTree(ctx)
	if err != nil {
		return fmt.Errorf("load organization tree: %w", err)
	}
	c.current.Store(newOrgTree(nodes))
	logger.Info(ctx, "organization tree cache loaded", "organizations", len(nodes))
	return nil
}

// Invalidate reloads the cache, logging failures. Used as the change callback
// of the organization service.
func (c *OrganizationTreeCache) Invalidate(ctx context.Context) {
	if err := c.Reload(ctx); err != nil {
		logger.Error(ctx, "failed to reload organization tree cache", "error", err)
	}
}

// Listen reloads the cache on organizations_changed notifications.
func (c *OrganizationTreeCache) Listen(l *Listener) {
	l.On(ChannelOrganizations, func(ctx context.Context, _ string) {
		c.Invalidate(ctx)
	})
}

// Node returns the cached node of orgID.
func (c *OrganizationTreeCache) Node(orgID id.ID) (OrganizationNode, bool) {
	n, ok := c.current.Load().nodes[orgID]
	return n, ok
}

// MainOrganization walks up from orgID to the organization without a parent.
func (c *OrganizationTreeCache) MainOrganization(orgID id.ID) (id.ID, error) {
	t := c.current.Load()
	n, ok := t.nodes[orgID]
	if !ok {
		return id.Nil(), apperror.NewNotFound("organization", orgID.String())
	}
	seen := map[id.ID]bool{orgID: true}
	for n.ParentID != nil {
		parent, ok := t.nodes[*n.ParentID]
		if !ok {
			// parent archived or not yet published: the topmost known node is the main one
			return n.RootID, nil
		}
		if seen[parent.RootID] {
			return id.Nil(), fmt.Errorf("organization hierarchy has a cycle at %s", parent.RootID)
		}
		seen[parent.RootID] = true
		n = parent
	}
	return n.RootID, nil
}

// Descendants returns every organization below orgID, breadth first.
func (c *OrganizationTreeCache) Descendants(orgID id.ID) []id.ID {
	t := c.current.Load()
	out := []id.ID{}
	seen := map[id.ID]bool{orgID: true}
	queue := append([]id.ID(nil), t.children[orgID]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, t.children[next]...)
	}
	return out
}

// IsDescendant reports whether orgID equals ancestorID or lies below it.
func (c *OrganizationTreeCache) IsDescendant(ancestorID, orgID id.ID) bool {
	if ancestorID == orgID {
		return true
	}
	t := c.current.Load()
	seen := map[id.ID]bool{}
	cur, ok := t.nodes[orgID]
	for ok && cur.ParentID != nil && !seen[cur.RootID] {
		seen[cur.RootID] = true
		if *cur.ParentID == ancestorID {
			return true
		}
		cur, ok = t.nodes[*cur.ParentID]
	}
	return false
}
