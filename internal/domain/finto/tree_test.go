package finto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

func item(code, parentURI string, order *int) *TreeItem {
	return &TreeItem{Item: Item{ID: id.New(), Code: code, Label: code, URI: "u:" + code, ParentURI: parentURI, OrderNumber: order}}
}

func TestLinkTree(t *testing.T) {
	one, two := 1, 2
	a := item("A", "", &two)
	b := item("B", "", &one)
	a1 := item("A1", "u:A", nil)
	a2 := item("A0", "u:A", nil)

	roots, err := LinkTree([]*TreeItem{a1, a, b, a2})

	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "B", roots[0].Code)
	assert.Equal(t, "A", roots[1].Code)
	assert.Nil(t, roots[0].ParentID)
	require.Len(t, a.Children, 2)
	assert.Equal(t, "A0", a.Children[0].Code)
	assert.Same(t, a, a1.Parent)
	assert.Equal(t, a.ID, *a1.ParentID)

	ordered := TopDown([]*TreeItem{a1, a, b, a2})
	require.Len(t, ordered, 4)
	assert.Equal(t, "A", ordered[0].Code)
}

func TestLinkTree_MissingParent(t *testing.T) {
	_, err := LinkTree([]*TreeItem{item("X", "u:nope", nil)})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, mustAppErr(t, err).Code)
}

func TestLinkTree_Cycle(t *testing.T) {
	a := item("A", "u:B", nil)
	b := item("B", "u:A", nil)

	_, err := LinkTree([]*TreeItem{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCheckOntologyAcyclic(t *testing.T) {
	a := &OntologyTerm{Item: Item{ID: id.New(), URI: "a"}}
	b := &OntologyTerm{Item: Item{ID: id.New(), URI: "b"}}
	c := &OntologyTerm{Item: Item{ID: id.New(), URI: "c"}}
	b.Parents = []*OntologyTermParent{{ParentID: a.ID, ChildID: b.ID}}
	c.Parents = []*OntologyTermParent{{ParentID: a.ID, ChildID: c.ID}, {ParentID: b.ID, ChildID: c.ID}}

	assert.NoError(t, CheckOntologyAcyclic([]*OntologyTerm{a, b, c}))

	a.Parents = []*OntologyTermParent{{ParentID: c.ID, ChildID: a.ID}}
	assert.Error(t, CheckOntologyAcyclic([]*OntologyTerm{a, b, c}))
}

func mustAppErr(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr
}
