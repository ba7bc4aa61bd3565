package cloning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/finto"
)

func sampleTerm() *finto.OntologyTerm {
	termID := id.New()
	parentID := id.New()
	order := 3
	fi := id.New()
	return &finto.OntologyTerm{
		Item: finto.Item{
			ID:           termID,
			Code:         "p1234",
			Label:        "kirjastot",
			OntologyType: "YSO",
			URI:          "http://www.yso.fi/onto/yso/p1234",
			ParentID:     &parentID,
			ParentURI:    "http://www.yso.fi/onto/yso/p1",
			Notation:     "N1",
			OrderNumber:  &order,
			IsValid:      true,
			Audit:        entity.Audit{Created: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), CreatedBy: "import"},
		},
		Names:        []*finto.Name{{OwnerID: termID, LocalizationID: fi, Name: "kirjastot"}},
		Descriptions: []*finto.Description{{OwnerID: termID, LocalizationID: fi, Description: "kuvaus"}},
		Parents:      []*finto.OntologyTermParent{{ParentID: parentID, ChildID: termID}},
		ExactMatches: []*finto.OntologyTermExactMatch{{
			OntologyTermID: termID,
			ExactMatchID:   id.New(),
			ExactMatch:     &finto.ExactMatch{URI: "http://example.org/lib"},
		}},
	}
}

func TestOntologyTermCloner_Clone(t *testing.T) {
	src := sampleTerm()
	c := DefaultOntologyTermCloner()

	dst := c.Clone(src)

	require.NotNil(t, dst)
	assert.NotSame(t, src, dst)
	assert.Equal(t, src.ID, dst.ID)
	assert.Equal(t, src.Code, dst.Code)
	assert.Equal(t, src.Label, dst.Label)
	assert.Equal(t, src.OntologyType, dst.OntologyType)
	assert.Equal(t, src.URI, dst.URI)
	assert.Equal(t, src.ParentURI, dst.ParentURI)
	assert.Equal(t, src.Notation, dst.Notation)
	assert.Equal(t, src.IsValid, dst.IsValid)
	assert.Equal(t, src.Audit, dst.Audit)
	assert.Equal(t, *src.ParentID, *dst.ParentID)
	assert.NotSame(t, src.ParentID, dst.ParentID)
	assert.NotSame(t, src.OrderNumber, dst.OrderNumber)

	assert.NotNil(t, dst.Names)
	assert.NotNil(t, dst.Descriptions)
	assert.NotNil(t, dst.Parents)
	assert.NotNil(t, dst.Children)
	assert.NotNil(t, dst.ExactMatches)
	assert.Empty(t, dst.Children)

	require.Len(t, dst.Names, 1)
	assert.NotSame(t, src.Names[0], dst.Names[0])
	assert.Equal(t, *src.Names[0], *dst.Names[0])
	require.Len(t, dst.ExactMatches, 1)
	assert.NotSame(t, src.ExactMatches[0].ExactMatch, dst.ExactMatches[0].ExactMatch)
}

func TestOntologyTermCloner_MutatingCloneLeavesSource(t *testing.T) {
	src := sampleTerm()
	dst := DefaultOntologyTermCloner().Clone(src)

	dst.Names[0].Name = "changed"
	dst.Names = append(dst.Names, &finto.Name{Name: "extra"})
	*dst.OrderNumber = 99

	assert.Equal(t, "kirjastot", src.Names[0].Name)
	assert.Len(t, src.Names, 1)
	assert.Equal(t, 3, *src.OrderNumber)
}

func TestOntologyTermCloner_Nil(t *testing.T) {
	c := DefaultOntologyTermCloner()

	assert.Nil(t, c.Clone(nil))

	out := c.CloneCollection(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out = c.CloneCollection([]*finto.OntologyTerm{nil, sampleTerm()})
	assert.Len(t, out, 1)
}

func TestNewOntologyTermCloner_RequiresEverySlot(t *testing.T) {
	_, err := NewOntologyTermCloner(OntologyTermClonerConfig{
		Names:        NameCloner(),
		Descriptions: DescriptionCloner(),
		Parents:      OntologyTermParentCloner(),
		ExactMatches: ExactMatchCloner(),
	})
	require.ErrorIs(t, err, ErrMissingSubCloner)
	assert.Contains(t, err.Error(), "children")
}

func TestNewOntologyTermCloner_Skip(t *testing.T) {
	c, err := NewOntologyTermCloner(OntologyTermClonerConfig{
		Names:        NameCloner(),
		Descriptions: Skip[finto.Description](),
		Parents:      OntologyTermParentCloner(),
		Children:     Skip[finto.OntologyTermParent](),
		ExactMatches: Skip[finto.OntologyTermExactMatch](),
	})
	require.NoError(t, err)

	dst := c.Clone(sampleTerm())
	assert.Len(t, dst.Names, 1)
	assert.NotNil(t, dst.Descriptions)
	assert.Empty(t, dst.Descriptions)
	assert.Empty(t, dst.ExactMatches)
}

func TestTreeItemCloner_RepointsChildren(t *testing.T) {
	root := &finto.TreeItem{Item: finto.Item{ID: id.New(), Code: "P1", URI: "u:P1"}, Kind: finto.KindServiceClass}
	child := &finto.TreeItem{Item: finto.Item{ID: id.New(), Code: "P1.1", URI: "u:P1.1", ParentID: &root.ID}, Parent: root}
	grandchild := &finto.TreeItem{Item: finto.Item{ID: id.New(), Code: "P1.1.1", URI: "u:P1.1.1", ParentID: &child.ID}, Parent: child}
	root.Children = []*finto.TreeItem{child}
	child.Children = []*finto.TreeItem{grandchild}

	dst := DefaultTreeItemCloner().Clone(root)

	require.Len(t, dst.Children, 1)
	assert.Nil(t, dst.Parent)
	assert.Same(t, dst, dst.Children[0].Parent)
	assert.NotSame(t, child, dst.Children[0])
	require.Len(t, dst.Children[0].Children, 1)
	assert.Same(t, dst.Children[0], dst.Children[0].Children[0].Parent)
	assert.Equal(t, grandchild.ID, dst.Children[0].Children[0].ID)
	assert.Equal(t, finto.KindServiceClass, dst.Kind)
}

func TestTreeItemCloner_SkipChildren(t *testing.T) {
	c, err := NewTreeItemCloner(TreeItemClonerConfig{
		Names:        NameCloner(),
		Descriptions: DescriptionCloner(),
		Children:     Skip[finto.TreeItem](),
	})
	require.NoError(t, err)

	root := &finto.TreeItem{Children: []*finto.TreeItem{{}}}
	dst := c.Clone(root)
	assert.NotNil(t, dst.Children)
	assert.Empty(t, dst.Children)
}

func TestNewTreeItemCloner_MissingChildren(t *testing.T) {
	_, err := NewTreeItemCloner(TreeItemClonerConfig{Names: NameCloner(), Descriptions: DescriptionCloner()})
	assert.ErrorIs(t, err, ErrMissingSubCloner)
}
