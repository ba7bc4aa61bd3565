// Package finto holds the national classification vocabularies (ontology terms,
// service classes, life events, target groups, industrial classes) imported from
// the Finto service as JSON.
package finto

import (
	"context"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
)

// Item carries the columns shared by every classification row.
type Item struct {
	ID           id.ID  `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Label        string `db:"label" json:"label"`
	OntologyType string `db:"ontology_type" json:"ontologyType,omitempty"`
	URI          string `db:"uri" json:"uri"`

	// ParentID is nil at roots.
	ParentID  *id.ID `db:"parent_id" json:"parentId,omitempty"`
	ParentURI string `db:"parent_uri" json:"parentUri,omitempty"`

	Notation    string `db:"notation" json:"notation,omitempty"`
	OrderNumber *int   `db:"order_number" json:"orderNumber,omitempty"`
	IsValid     bool   `db:"is_valid" json:"isValid"`

	entity.Audit
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if strings.TrimSpace(i.URI) == "" {
		return apperror.NewValidation("uri is required").WithDetail("field", "uri")
	}
	if strings.TrimSpace(i.Label) == "" {
		return apperror.NewValidation("label is required").
			WithDetail("field", "label").WithDetail("uri", i.URI)
	}
	return nil
}

// Name is a localized label.
type Name struct {
	OwnerID        id.ID  `db:"owner_id" json:"-"`
	LocalizationID id.ID  `db:"localization_id" json:"localizationId"`
	Name           string `db:"name" json:"name"`
}

// Description is a localized definition.
type Description struct {
	OwnerID        id.ID  `db:"owner_id" json:"-"`
	LocalizationID id.ID  `db:"localization_id" json:"localizationId"`
	Description    string `db:"description" json:"description"`
}

// OntologyTerm is a node of the YSO-style ontology. Terms may have several parents,
// so the hierarchy is kept in join rows rather than in Item.ParentID.
type OntologyTerm struct {
	Item

	Names        []*Name                   `db:"-" json:"names"`
	Descriptions []*Description            `db:"-" json:"descriptions"`
	Parents      []*OntologyTermParent     `db:"-" json:"parents"`
	Children     []*OntologyTermParent     `db:"-" json:"children"`
	ExactMatches []*OntologyTermExactMatch `db:"-" json:"exactMatches"`
}

// OntologyTermParent links a child term to a parent term.
type OntologyTermParent struct {
	ParentID id.ID `db:"parent_id" json:"parentId"`
	ChildID  id.ID `db:"child_id" json:"childId"`

	Parent *OntologyTerm `db:"-" json:"-"`
	Child  *OntologyTerm `db:"-" json:"-"`
}

// ExactMatch is an equivalent concept in another vocabulary.
type ExactMatch struct {
	ID  id.ID  `db:"id" json:"id"`
	URI string `db:"uri" json:"uri"`
}

// OntologyTermExactMatch links a term to an exact match.
type OntologyTermExactMatch struct {
	OntologyTermID id.ID `db:"ontology_term_id" json:"ontologyTermId"`
	ExactMatchID   id.ID `db:"exact_match_id" json:"exactMatchId"`

	ExactMatch *ExactMatch `db:"-" json:"exactMatch,omitempty"`
}

// TreeKind names a single-parent classification.
type TreeKind string

const (
	KindServiceClass    TreeKind = "service_class"
	KindLifeEvent       TreeKind = "life_event"
	KindTargetGroup     TreeKind = "target_group"
	KindIndustrialClass TreeKind = "industrial_class"
)

// Valid reports whether k is a known classification.
func (k TreeKind) Valid() bool {
	switch k {
	case KindServiceClass, KindLifeEvent, KindTargetGroup, KindIndustrialClass:
		return true
	}
	return false
}

// TreeItem is a node of a single-parent classification.
type TreeItem struct {
	Item

	Kind         TreeKind       `db:"-" json:"kind"`
	Names        []*Name        `db:"-" json:"names"`
	Descriptions []*Description `db:"-" json:"descriptions"`

	Parent   *TreeItem   `db:"-" json:"-"`
	Children []*TreeItem `db:"-" json:"children,omitempty"`
}

// IsRoot returns true if the item has no parent.
func (t *TreeItem) IsRoot() bool {
	return t.ParentID == nil
}

// VmJsonFintoItem is one entry of a Finto JSON export.
type VmJsonFintoItem struct {
	Code         string `json:"code"`
	Label        string `json:"label" validate:"required"`
	URI          string `json:"uri" validate:"required,uri"`
	ParentURI    string `json:"parentUri"`
	OntologyType string `json:"ontologyType"`
	Notation     string `json:"notation"`
	OrderNumber  *int   `json:"orderNumber"`

	// BroaderURIs lists parent terms of an ontology term.
	BroaderURIs []string `json:"broaderURIs"`
	// ExactMatchURIs lists equivalent concepts.
	ExactMatchURIs []string `json:"exactMatchURIs"`

	// Names and Descriptions are keyed by language code.
	Names        map[string]string `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
}
