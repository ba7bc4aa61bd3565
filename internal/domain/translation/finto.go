package translation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/finto"
	"ptv/internal/domain/types"
)

// FintoFinder looks up stored classification rows by URI.
type FintoFinder interface {
	FindOntologyTermByURI(ctx context.Context, uri string) (*finto.OntologyTerm, error)
	FindTreeItemByURI(ctx context.Context, kind finto.TreeKind, uri string) (*finto.TreeItem, error)
}

// FintoTranslator maps Finto export entries to ontology terms. The natural key is URI.
// Parent links are resolved by the import service, which sees the whole batch.
type FintoTranslator struct {
	finder FintoFinder
	types  types.Cache
}

// NewFintoTranslator creates a new ontology term translator.
func NewFintoTranslator(finder FintoFinder, cache types.Cache) *FintoTranslator {
	return &FintoTranslator{finder: finder, types: cache}
}

var _ Translator[*finto.OntologyTerm, finto.VmJsonFintoItem] = (*FintoTranslator)(nil)

// TranslateVMToEntity implements Translator.
func (t *FintoTranslator) TranslateVMToEntity(ctx context.Context, vm finto.VmJsonFintoItem) (*finto.OntologyTerm, error) {
	uri := strings.TrimSpace(vm.URI)
	var candidates []*finto.OntologyTerm
	stored, err := t.finder.FindOntologyTermByURI(ctx, uri)
	if err := candidateErr(err, uri); err != nil {
		return nil, err
	}
	if stored != nil {
		candidates = append(candidates, stored)
	}

	res, existing := ResolveByKey(candidates,
		func(c *finto.OntologyTerm) bool { return c.URI == uri },
		func(c *finto.OntologyTerm) id.ID { return c.ID },
	)

	term := &finto.OntologyTerm{Item: itemFromVM(vm, res)}
	if existing != nil {
		term.Audit = existing.Audit
		term.Audit.Touch("import")
		term.Children = existing.Children
	} else {
		term.Children = []*finto.OntologyTermParent{}
	}
	term.Parents = []*finto.OntologyTermParent{}

	if term.Names, term.Descriptions, err = t.localized(vm, res.EntityID()); err != nil {
		return nil, err
	}

	term.ExactMatches = make([]*finto.OntologyTermExactMatch, 0, len(vm.ExactMatchURIs))
	for _, u := range vm.ExactMatchURIs {
		link := &finto.OntologyTermExactMatch{OntologyTermID: res.EntityID()}
		if existing != nil {
			for _, em := range existing.ExactMatches {
				if em.ExactMatch != nil && em.ExactMatch.URI == u {
					link.ExactMatchID = em.ExactMatchID
					link.ExactMatch = &finto.ExactMatch{ID: em.ExactMatchID, URI: u}
				}
			}
		}
		if link.ExactMatch == nil {
			link.ExactMatchID = id.New()
			link.ExactMatch = &finto.ExactMatch{ID: link.ExactMatchID, URI: u}
		}
		term.ExactMatches = append(term.ExactMatches, link)
	}
	return term, nil
}

// TranslateEntityToVM implements Translator.
func (t *FintoTranslator) TranslateEntityToVM(ctx context.Context, term *finto.OntologyTerm) (finto.VmJsonFintoItem, error) {
	vm := itemToVM(term.Item)
	var err error
	if vm.Names, vm.Descriptions, err = t.localizedToVM(term.Names, term.Descriptions); err != nil {
		return finto.VmJsonFintoItem{}, err
	}
	for _, em := range term.ExactMatches {
		if em.ExactMatch != nil {
			vm.ExactMatchURIs = append(vm.ExactMatchURIs, em.ExactMatch.URI)
		}
	}
	return vm, nil
}

// TreeItemTranslator maps Finto export entries to items of one classification.
type TreeItemTranslator struct {
	kind   finto.TreeKind
	finder FintoFinder
	types  types.Cache
}

// NewTreeItemTranslator creates a translator for kind.
func NewTreeItemTranslator(kind finto.TreeKind, finder FintoFinder, cache types.Cache) *TreeItemTranslator {
	return &TreeItemTranslator{kind: kind, finder: finder, types: cache}
}

var _ Translator[*finto.TreeItem, finto.VmJsonFintoItem] = (*TreeItemTranslator)(nil)

// TranslateVMToEntity implements Translator. ParentID is left for the import service
// to resolve from ParentURI.
func (t *TreeItemTranslator) TranslateVMToEntity(ctx context.Context, vm finto.VmJsonFintoItem) (*finto.TreeItem, error) {
	uri := strings.TrimSpace(vm.URI)
	var candidates []*finto.TreeItem
	stored, err := t.finder.FindTreeItemByURI(ctx, t.kind, uri)
	if err := candidateErr(err, uri); err != nil {
		return nil, err
	}
	if stored != nil {
		candidates = append(candidates, stored)
	}

	res, existing := ResolveByKey(candidates,
		func(c *finto.TreeItem) bool { return c.URI == uri },
		func(c *finto.TreeItem) id.ID { return c.ID },
	)

	item := &finto.TreeItem{Item: itemFromVM(vm, res), Kind: t.kind}
	if existing != nil {
		item.Audit = existing.Audit
		item.Audit.Touch("import")
	}
	if item.Names, item.Descriptions, err = t.localized(vm, res.EntityID()); err != nil {
		return nil, err
	}
	return item, nil
}

// TranslateEntityToVM implements Translator.
func (t *TreeItemTranslator) TranslateEntityToVM(ctx context.Context, item *finto.TreeItem) (finto.VmJsonFintoItem, error) {
	vm := itemToVM(item.Item)
	if item.Parent != nil {
		vm.ParentURI = item.Parent.URI
	}
	var err error
	vm.Names, vm.Descriptions, err = localizedToVM(t.types, item.Names, item.Descriptions)
	return vm, err
}

func (t *TreeItemTranslator) localized(vm finto.VmJsonFintoItem, owner id.ID) ([]*finto.Name, []*finto.Description, error) {
	return localized(t.types, vm, owner)
}

func (t *FintoTranslator) localized(vm finto.VmJsonFintoItem, owner id.ID) ([]*finto.Name, []*finto.Description, error) {
	return localized(t.types, vm, owner)
}

func (t *FintoTranslator) localizedToVM(names []*finto.Name, descs []*finto.Description) (map[string]string, map[string]string, error) {
	return localizedToVM(t.types, names, descs)
}

func candidateErr(err error, uri string) error {
	if err == nil || apperror.IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("find %s: %w", uri, err)
}

func itemFromVM(vm finto.VmJsonFintoItem, res Resolution) finto.Item {
	code := vm.Code
	if code == "" {
		code = vm.Notation
	}
	if code == "" {
		code = lastSegment(vm.URI)
	}
	return finto.Item{
		ID:           res.EntityID(),
		Code:         code,
		Label:        strings.TrimSpace(vm.Label),
		OntologyType: vm.OntologyType,
		URI:          strings.TrimSpace(vm.URI),
		ParentURI:    strings.TrimSpace(vm.ParentURI),
		Notation:     vm.Notation,
		OrderNumber:  vm.OrderNumber,
		IsValid:      true,
		Audit:        entity.NewAudit("import"),
	}
}

func itemToVM(it finto.Item) finto.VmJsonFintoItem {
	return finto.VmJsonFintoItem{
		Code:         it.Code,
		Label:        it.Label,
		URI:          it.URI,
		ParentURI:    it.ParentURI,
		OntologyType: it.OntologyType,
		Notation:     it.Notation,
		OrderNumber:  it.OrderNumber,
	}
}

func lastSegment(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndexAny(uri, "/#"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// localized converts the language maps of vm into rows, ordered by language code.
func localized(cache types.Cache, vm finto.VmJsonFintoItem, owner id.ID) ([]*finto.Name, []*finto.Description, error) {
	names := make([]*finto.Name, 0, len(vm.Names))
	for _, lang := range sortedKeys(vm.Names) {
		langID, err := cache.Get(types.KindLanguage, lang)
		if err != nil {
			return nil, nil, apperror.NewValidation("unknown language").
				WithDetail("uri", vm.URI).WithDetail("language", lang).WithCause(err)
		}
		names = append(names, &finto.Name{OwnerID: owner, LocalizationID: langID, Name: vm.Names[lang]})
	}
	descs := make([]*finto.Description, 0, len(vm.Descriptions))
	for _, lang := range sortedKeys(vm.Descriptions) {
		langID, err := cache.Get(types.KindLanguage, lang)
		if err != nil {
			return nil, nil, apperror.NewValidation("unknown language").
				WithDetail("uri", vm.URI).WithDetail("language", lang).WithCause(err)
		}
		descs = append(descs, &finto.Description{OwnerID: owner, LocalizationID: langID, Description: vm.Descriptions[lang]})
	}
	return names, descs, nil
}

func localizedToVM(cache types.Cache, names []*finto.Name, descs []*finto.Description) (map[string]string, map[string]string, error) {
	outNames := make(map[string]string, len(names))
	for _, n := range names {
		lang, err := cache.Code(types.KindLanguage, n.LocalizationID)
		if err != nil {
			return nil, nil, err
		}
		outNames[lang] = n.Name
	}
	outDescs := make(map[string]string, len(descs))
	for _, d := range descs {
		lang, err := cache.Code(types.KindLanguage, d.LocalizationID)
		if err != nil {
			return nil, nil, err
		}
		outDescs[lang] = d.Description
	}
	return outNames, outDescs, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
