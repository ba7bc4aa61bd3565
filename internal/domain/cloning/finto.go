package cloning

import (
	"ptv/internal/domain/finto"
)

// NameCloner copies finto names.
func NameCloner() Cloner[finto.Name] { return Value[finto.Name]() }

// DescriptionCloner copies finto descriptions.
func DescriptionCloner() Cloner[finto.Description] { return Value[finto.Description]() }

// OntologyTermParentCloner copies hierarchy links, dropping the navigation pointers.
func OntologyTermParentCloner() Cloner[finto.OntologyTermParent] {
	return Func[finto.OntologyTermParent](func(src *finto.OntologyTermParent) *finto.OntologyTermParent {
		return &finto.OntologyTermParent{ParentID: src.ParentID, ChildID: src.ChildID}
	})
}

// ExactMatchCloner copies exact match links together with the matched concept.
func ExactMatchCloner() Cloner[finto.OntologyTermExactMatch] {
	return Func[finto.OntologyTermExactMatch](func(src *finto.OntologyTermExactMatch) *finto.OntologyTermExactMatch {
		c := *src
		c.ExactMatch = ptr(src.ExactMatch)
		return &c
	})
}

func cloneItem(src finto.Item) finto.Item {
	c := src
	c.ParentID = ptr(src.ParentID)
	c.OrderNumber = ptr(src.OrderNumber)
	return c
}

// OntologyTermClonerConfig lists the sub-cloners of OntologyTermCloner. Every slot is required.
type OntologyTermClonerConfig struct {
	Names        Cloner[finto.Name]
	Descriptions Cloner[finto.Description]
	Parents      Cloner[finto.OntologyTermParent]
	Children     Cloner[finto.OntologyTermParent]
	ExactMatches Cloner[finto.OntologyTermExactMatch]
}

// OntologyTermCloner copies ontology terms.
type OntologyTermCloner struct {
	cfg OntologyTermClonerConfig
}

// NewOntologyTermCloner validates cfg and builds the cloner.
func NewOntologyTermCloner(cfg OntologyTermClonerConfig) (*OntologyTermCloner, error) {
	if err := require(
		slot{"names", cfg.Names},
		slot{"descriptions", cfg.Descriptions},
		slot{"parents", cfg.Parents},
		slot{"children", cfg.Children},
		slot{"exactMatches", cfg.ExactMatches},
	); err != nil {
		return nil, err
	}
	return &OntologyTermCloner{cfg: cfg}, nil
}

// DefaultOntologyTermCloner copies every collection of a term.
func DefaultOntologyTermCloner() *OntologyTermCloner {
	return &OntologyTermCloner{cfg: OntologyTermClonerConfig{
		Names:        NameCloner(),
		Descriptions: DescriptionCloner(),
		Parents:      OntologyTermParentCloner(),
		Children:     OntologyTermParentCloner(),
		ExactMatches: ExactMatchCloner(),
	}}
}

// Clone implements Cloner.
func (c *OntologyTermCloner) Clone(src *finto.OntologyTerm) *finto.OntologyTerm {
	if src == nil {
		return nil
	}
	return &finto.OntologyTerm{
		Item:         cloneItem(src.Item),
		Names:        c.cfg.Names.CloneCollection(src.Names),
		Descriptions: c.cfg.Descriptions.CloneCollection(src.Descriptions),
		Parents:      c.cfg.Parents.CloneCollection(src.Parents),
		Children:     c.cfg.Children.CloneCollection(src.Children),
		ExactMatches: c.cfg.ExactMatches.CloneCollection(src.ExactMatches),
	}
}

// CloneCollection implements Cloner.
func (c *OntologyTermCloner) CloneCollection(src []*finto.OntologyTerm) []*finto.OntologyTerm {
	return Collect(Seq[finto.OntologyTerm](c, src), len(src))
}

type self[T any] struct{}

func (self[T]) Clone(*T) *T { panic("cloning: Self used outside of a recursive cloner") }

func (self[T]) CloneCollection([]*T) []*T {
	panic("cloning: Self used outside of a recursive cloner")
}

// Self marks a slot that the cloner being constructed fills with itself.
func Self[T any]() Cloner[T] {
	return self[T]{}
}

// TreeItemClonerConfig lists the sub-cloners of TreeItemCloner. Every slot is required.
// Children is either Self (recursive copy) or Skip.
type TreeItemClonerConfig struct {
	Names        Cloner[finto.Name]
	Descriptions Cloner[finto.Description]
	Children     Cloner[finto.TreeItem]
}

// TreeItemCloner copies classification trees. Cloned children point at the cloned parent.
type TreeItemCloner struct {
	cfg TreeItemClonerConfig
}

// NewTreeItemCloner validates cfg and builds the cloner.
func NewTreeItemCloner(cfg TreeItemClonerConfig) (*TreeItemCloner, error) {
	if err := require(
		slot{"names", cfg.Names},
		slot{"descriptions", cfg.Descriptions},
		slot{"children", cfg.Children},
	); err != nil {
		return nil, err
	}
	c := &TreeItemCloner{cfg: cfg}
	if _, ok := cfg.Children.(self[finto.TreeItem]); ok {
		c.cfg.Children = c
	}
	return c, nil
}

// DefaultTreeItemCloner copies a whole subtree.
func DefaultTreeItemCloner() *TreeItemCloner {
	c, _ := NewTreeItemCloner(TreeItemClonerConfig{
		Names:        NameCloner(),
		Descriptions: DescriptionCloner(),
		Children:     Self[finto.TreeItem](),
	})
	return c
}

// Clone implements Cloner. The clone's Parent is nil; only children are re-pointed.
func (c *TreeItemCloner) Clone(src *finto.TreeItem) *finto.TreeItem {
	if src == nil {
		return nil
	}
	dst := &finto.TreeItem{
		Item:         cloneItem(src.Item),
		Kind:         src.Kind,
		Names:        c.cfg.Names.CloneCollection(src.Names),
		Descriptions: c.cfg.Descriptions.CloneCollection(src.Descriptions),
		Children:     c.cfg.Children.CloneCollection(src.Children),
	}
	for _, child := range dst.Children {
		child.Parent = dst
	}
	return dst
}

// CloneCollection implements Cloner.
func (c *TreeItemCloner) CloneCollection(src []*finto.TreeItem) []*finto.TreeItem {
	return Collect(Seq[finto.TreeItem](c, src), len(src))
}
