package finto

import (
	"context"
	"fmt"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/core/tx"
	"ptv/pkg/logger"
)

// ServiceConfig configures the classification service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	Terms     TermTranslator
	// Trees returns the translator of a classification.
	Trees func(kind TreeKind) ItemTranslator
	// OnImported is called after a committed import, e.g. to drop cached trees.
	OnImported func(ctx context.Context, kind TreeKind)
	// Cache serves GetTree when set.
	Cache TreeSource
}

// TreeSource returns linked trees, typically from memory.
type TreeSource interface {
	Tree(ctx context.Context, kind TreeKind) ([]*TreeItem, error)
}

// Service imports and reads classifications.
type Service struct {
	repo       Repository
	txManager  tx.Manager
	terms      TermTranslator
	trees      func(kind TreeKind) ItemTranslator
	onImported func(ctx context.Context, kind TreeKind)
	cache      TreeSource
}

// NewService creates a new classification service.
func NewService(cfg ServiceConfig) *Service {
	onImported := cfg.OnImported
	if onImported == nil {
		onImported = func(context.Context, TreeKind) {}
	}
	return &Service{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		terms:      cfg.Terms,
		trees:      cfg.Trees,
		onImported: onImported,
		cache:      cfg.Cache,
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Roots    int `json:"roots,omitempty"`
}

// OntologyKind is passed to OnImported after an ontology import.
const OntologyKind TreeKind = "ontology"

// ImportOntology translates entries into terms, links them to their broader terms
// (within the batch or already stored) and stores everything in one unit of work.
func (s *Service) ImportOntology(ctx context.Context, items []VmJsonFintoItem) (ImportResult, error) {
	var result ImportResult
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		terms := make([]*OntologyTerm, 0, len(items))
		byURI := make(map[string]*OntologyTerm, len(items))
		for _, vm := range items {
			if _, dup := byURI[vm.URI]; dup {
				return apperror.NewDuplicityCheck("ontology term", "uri", vm.URI)
			}
			term, err := s.terms.TranslateVMToEntity(ctx, vm)
			if err != nil {
				return fmt.Errorf("translate %s: %w", vm.URI, err)
			}
			if err := term.Validate(ctx); err != nil {
				return err
			}
			terms = append(terms, term)
			byURI[term.URI] = term
		}

		for i, vm := range items {
			term := terms[i]
			for _, broader := range vm.BroaderURIs {
				parentID, err := s.resolveTerm(ctx, byURI, broader)
				if err != nil {
					return err
				}
				term.Parents = append(term.Parents, &OntologyTermParent{ParentID: parentID, ChildID: term.ID})
			}
		}

		if err := CheckOntologyAcyclic(terms); err != nil {
			return err
		}
		if err := s.repo.SaveOntologyTerms(ctx, terms); err != nil {
			return fmt.Errorf("save ontology terms: %w", err)
		}
		result.Imported = len(terms)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.onImported(ctx, OntologyKind)
	logger.Info(ctx, "ontology imported", "count", result.Imported)
	return result, nil
}

func (s *Service) resolveTerm(ctx context.Context, batch map[string]*OntologyTerm, uri string) (id.ID, error) {
	if t, ok := batch[uri]; ok {
		return t.ID, nil
	}
	stored, err := s.repo.FindOntologyTermByURI(ctx, uri)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewValidation("broader term not found").WithDetail("uri", uri)
		}
		return id.Nil(), err
	}
	return stored.ID, nil
}

// ImportTree translates entries of one classification, resolves parents from
// ParentURI and stores the tree top-down in one unit of work.
func (s *Service) ImportTree(ctx context.Context, kind TreeKind, items []VmJsonFintoItem) (ImportResult, error) {
	if !kind.Valid() {
		return ImportResult{}, apperror.NewValidation("unknown classification").WithDetail("kind", kind)
	}
	translator := s.trees(kind)

	var result ImportResult
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		batch := make([]*TreeItem, 0, len(items))
		inBatch := make(map[string]bool, len(items))
		for _, vm := range items {
			if inBatch[vm.URI] {
				return apperror.NewDuplicityCheck(string(kind), "uri", vm.URI)
			}
			inBatch[vm.URI] = true

			item, err := translator.TranslateVMToEntity(ctx, vm)
			if err != nil {
				return fmt.Errorf("translate %s: %w", vm.URI, err)
			}
			if err := item.Validate(ctx); err != nil {
				return err
			}
			batch = append(batch, item)
		}

		for _, item := range batch {
			if item.ParentURI == "" || inBatch[item.ParentURI] {
				continue
			}
			parent, err := s.repo.FindTreeItemByURI(ctx, kind, item.ParentURI)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewValidation("parent not found").
						WithDetail("uri", item.URI).WithDetail("parentUri", item.ParentURI)
				}
				return err
			}
			item.ParentID = id.Ptr(parent.ID)
		}

		roots, err := LinkTree(batch)
		if err != nil {
			return err
		}

		ordered := TopDown(batch)
		if err := s.repo.SaveTreeItems(ctx, kind, ordered); err != nil {
			return fmt.Errorf("save %s: %w", kind, err)
		}
		result.Imported = len(ordered)
		result.Roots = len(roots)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.onImported(ctx, kind)
	logger.Info(ctx, "classification imported", "kind", kind, "count", result.Imported)
	return result, nil
}

// GetTree loads a classification and links it into roots.
func (s *Service) GetTree(ctx context.Context, kind TreeKind) ([]*TreeItem, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("unknown classification").WithDetail("kind", kind)
	}
	if s.cache != nil {
		return s.cache.Tree(ctx, kind)
	}
	var roots []*TreeItem
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		items, err := s.repo.ListTree(ctx, kind)
		if err != nil {
			return err
		}
		for _, it := range items {
			it.Kind = kind
		}
		roots, err = LinkTree(items)
		return err
	})
	return roots, err
}

// GetOntologyTerm returns one term.
func (s *Service) GetOntologyTerm(ctx context.Context, termID id.ID) (*OntologyTerm, error) {
	var term *OntologyTerm
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		term, err = s.repo.GetOntologyTerm(ctx, termID)
		return err
	})
	return term, err
}

// SearchOntology finds terms by label.
func (s *Service) SearchOntology(ctx context.Context, query string, limit int) ([]*OntologyTerm, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []*OntologyTerm
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.SearchOntologyTerms(ctx, query, limit)
		return err
	})
	return out, err
}
