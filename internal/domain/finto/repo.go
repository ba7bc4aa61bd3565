package finto

import (
	"context"

	"ptv/internal/core/id"
)

// Repository defines persistence for classifications.
type Repository interface {
	// FindOntologyTermByURI returns the term with uri or a not found error.
	FindOntologyTermByURI(ctx context.Context, uri string) (*OntologyTerm, error)

	// GetOntologyTerm loads a term with its names, descriptions, links and exact matches.
	GetOntologyTerm(ctx context.Context, termID id.ID) (*OntologyTerm, error)

	// SearchOntologyTerms matches query against labels and names.
	SearchOntologyTerms(ctx context.Context, query string, limit int) ([]*OntologyTerm, error)

	// SaveOntologyTerms upserts terms first and their links afterwards.
	SaveOntologyTerms(ctx context.Context, terms []*OntologyTerm) error

	// FindTreeItemByURI returns the item of kind with uri or a not found error.
	FindTreeItemByURI(ctx context.Context, kind TreeKind, uri string) (*TreeItem, error)

	// ListTree returns every item of kind, unlinked.
	ListTree(ctx context.Context, kind TreeKind) ([]*TreeItem, error)

	// SaveTreeItems upserts items; parents must precede their children.
	SaveTreeItems(ctx context.Context, kind TreeKind, items []*TreeItem) error
}

// TermTranslator builds an ontology term from an export entry.
type TermTranslator interface {
	TranslateVMToEntity(ctx context.Context, vm VmJsonFintoItem) (*OntologyTerm, error)
}

// ItemTranslator builds a tree item from an export entry.
type ItemTranslator interface {
	TranslateVMToEntity(ctx context.Context, vm VmJsonFintoItem) (*TreeItem, error)
}
