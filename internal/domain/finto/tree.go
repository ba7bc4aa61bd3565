package finto

import (
	"fmt"
	"sort"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

// LinkTree resolves ParentURI into ParentID, fills Parent/Children navigation and
// returns the roots ordered by OrderNumber then Code. Items whose ParentURI is not in
// the batch must already carry ParentID (resolved by the caller from storage).
// Fails on cycles and on parents that cannot be resolved.
func LinkTree(items []*TreeItem) ([]*TreeItem, error) {
	byURI := make(map[string]*TreeItem, len(items))
	byID := make(map[id.ID]*TreeItem, len(items))
	for _, it := range items {
		byURI[it.URI] = it
		byID[it.ID] = it
		it.Parent = nil
		it.Children = nil
	}

	var roots []*TreeItem
	for _, it := range items {
		if it.ParentURI != "" {
			if parent, ok := byURI[it.ParentURI]; ok {
				it.ParentID = &parent.ID
			} else if it.ParentID == nil {
				return nil, apperror.NewValidation("parent not found").
					WithDetail("uri", it.URI).WithDetail("parentUri", it.ParentURI)
			}
		}
		if it.ParentID == nil {
			roots = append(roots, it)
			continue
		}
		if parent, ok := byID[*it.ParentID]; ok {
			it.Parent = parent
			parent.Children = append(parent.Children, it)
		}
	}

	if err := checkAcyclic(items); err != nil {
		return nil, err
	}

	sortItems(roots)
	for _, it := range items {
		sortItems(it.Children)
	}
	return roots, nil
}

func checkAcyclic(items []*TreeItem) error {
	for _, start := range items {
		seen := map[id.ID]bool{start.ID: true}
		for p := start.Parent; p != nil; p = p.Parent {
			if seen[p.ID] {
				return apperror.NewValidation("classification hierarchy contains a cycle").
					WithDetail("uri", start.URI)
			}
			seen[p.ID] = true
		}
	}
	return nil
}

func sortItems(list []*TreeItem) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].OrderNumber, list[j].OrderNumber
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].Code < list[j].Code
	})
}

// CheckOntologyAcyclic verifies that following Parents links never returns to a term.
// Links to terms outside the batch are ignored.
func CheckOntologyAcyclic(terms []*OntologyTerm) error {
	parents := make(map[id.ID][]id.ID, len(terms))
	uris := make(map[id.ID]string, len(terms))
	for _, t := range terms {
		uris[t.ID] = t.URI
		for _, p := range t.Parents {
			parents[t.ID] = append(parents[t.ID], p.ParentID)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[id.ID]int, len(terms))
	var visit func(n id.ID) error
	visit = func(n id.ID) error {
		switch state[n] {
		case visiting:
			return apperror.NewValidation("ontology hierarchy contains a cycle").
				WithDetail("uri", uris[n])
		case done:
			return nil
		}
		state[n] = visiting
		for _, p := range parents[n] {
			if _, inBatch := uris[p]; !inBatch {
				continue
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		state[n] = done
		return nil
	}
	for _, t := range terms {
		if err := visit(t.ID); err != nil {
			return fmt.Errorf("check ontology: %w", err)
		}
	}
	return nil
}

// TopDown orders linked items so that every parent precedes its children.
// Items whose parent is outside the slice count as roots.
func TopDown(items []*TreeItem) []*TreeItem {
	out := make([]*TreeItem, 0, len(items))
	queue := make([]*TreeItem, 0, len(items))
	for _, it := range items {
		if it.Parent == nil {
			queue = append(queue, it)
		}
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		out = append(out, it)
		queue = append(queue, it.Children...)
	}
	return out
}
