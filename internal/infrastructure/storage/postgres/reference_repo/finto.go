// Package reference_repo stores reference data: classifications, countries
// and the type codes behind the types cache.
package reference_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/domain/finto"
	"ptv/internal/infrastructure/storage/postgres"
)

const (
	ontologyTermTable      = "ontology_term"
	ontologyParentTable    = "ontology_term_parent"
	exactMatchTable        = "exact_match"
	ontologyExactMatchLink = "ontology_term_exact_match"
)

var (
	itemCols        = postgres.ExtractDBColumns[finto.Item]()
	nameCols        = postgres.ExtractDBColumns[finto.Name]()
	descriptionCols = postgres.ExtractDBColumns[finto.Description]()
)

// FintoRepo implements finto.Repository. Every tree kind has its own table
// named after the kind, plus <kind>_name and <kind>_description.
type FintoRepo struct {
	txm   *postgres.TxManager
	batch *postgres.BatchWriter
}

// NewFintoRepo creates a new classification repository.
func NewFintoRepo(txm *postgres.TxManager) *FintoRepo {
	return &FintoRepo{txm: txm, batch: postgres.NewBatchWriter(txm)}
}

func (r *FintoRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func treeTable(kind finto.TreeKind) (string, error) {
	if !kind.Valid() {
		return "", apperror.NewValidation("unknown classification").WithDetail("kind", kind)
	}
	return string(kind), nil
}

// upsertItem queues an insert of the item row that updates every column on conflict.
func upsertItem(table string, item *finto.Item) (postgres.BatchQuery, error) {
	data := postgres.StructToMap(item)
	set := make([]string, 0, len(itemCols))
	for _, c := range itemCols {
		if c == "id" || c == "created" || c == "created_by" {
			continue
		}
		set = append(set, c+" = EXCLUDED."+c)
	}
	return postgres.Queue(postgres.Builder().
		Insert(table).
		SetMap(data).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(set, ", ")))
}

func (r *FintoRepo) getItem(ctx context.Context, table string, where squirrel.Sqlizer, dst any, key string) error {
	sql, args, err := postgres.Builder().Select(itemCols...).From(table).Where(where).Limit(1).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(table, key)
		}
		return fmt.Errorf("get %s: %w", table, postgres.MapError(err))
	}
	return nil
}

func (r *FintoRepo) selectWhere(ctx context.Context, table string, cols []string, where squirrel.Sqlizer, dst any) error {
	sql, args, err := postgres.Builder().Select(cols...).From(table).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("load %s: %w", table, postgres.MapError(err))
	}
	return nil
}

// FindOntologyTermByURI implements finto.Repository.
func (r *FintoRepo) FindOntologyTermByURI(ctx context.Context, uri string) (*finto.OntologyTerm, error) {
	term := &finto.OntologyTerm{}
	if err := r.getItem(ctx, ontologyTermTable, squirrel.Eq{"uri": uri}, &term.Item, uri); err != nil {
		return nil, err
	}
	return term, r.loadTermDetails(ctx, term)
}

// GetOntologyTerm implements finto.Repository.
func (r *FintoRepo) GetOntologyTerm(ctx context.Context, termID id.ID) (*finto.OntologyTerm, error) {
	term := &finto.OntologyTerm{}
	if err := r.getItem(ctx, ontologyTermTable, squirrel.Eq{"id": termID}, &term.Item, termID.String()); err != nil {
		return nil, err
	}
	return term, r.loadTermDetails(ctx, term)
}

func (r *FintoRepo) loadTermDetails(ctx context.Context, term *finto.OntologyTerm) error {
	term.Names = []*finto.Name{}
	term.Descriptions = []*finto.Description{}
	term.Parents = []*finto.OntologyTermParent{}
	term.Children = []*finto.OntologyTermParent{}
	term.ExactMatches = []*finto.OntologyTermExactMatch{}

	if err := r.selectWhere(ctx, ontologyTermTable+"_name", nameCols, squirrel.Eq{"owner_id": term.ID}, &term.Names); err != nil {
		return err
	}
	if err := r.selectWhere(ctx, ontologyTermTable+"_description", descriptionCols, squirrel.Eq{"owner_id": term.ID}, &term.Descriptions); err != nil {
		return err
	}
	if err := r.selectWhere(ctx, ontologyParentTable, []string{"parent_id", "child_id"}, squirrel.Eq{"child_id": term.ID}, &term.Parents); err != nil {
		return err
	}
	if err := r.selectWhere(ctx, ontologyParentTable, []string{"parent_id", "child_id"}, squirrel.Eq{"parent_id": term.ID}, &term.Children); err != nil {
		return err
	}

	var matches []finto.ExactMatch
	sql, args, err := postgres.Builder().
		Select("em.id", "em.uri").
		From(exactMatchTable + " em").
		Join(ontologyExactMatchLink + " l ON l.exact_match_id = em.id").
		Where(squirrel.Eq{"l.ontology_term_id": term.ID}).
		OrderBy("em.uri").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &matches, sql, args...); err != nil {
		return fmt.Errorf("load exact matches: %w", postgres.MapError(err))
	}
	for i := range matches {
		m := matches[i]
		term.ExactMatches = append(term.ExactMatches, &finto.OntologyTermExactMatch{
			OntologyTermID: term.ID,
			ExactMatchID:   m.ID,
			ExactMatch:     &m,
		})
	}
	return nil
}

// SearchOntologyTerms implements finto.Repository.
func (r *FintoRepo) SearchOntologyTerms(ctx context.Context, query string, limit int) ([]*finto.OntologyTerm, error) {
	pattern := "%" + query + "%"
	sql, args, err := postgres.Builder().
		Select(itemCols...).
		From(ontologyTermTable + " t").
		Where(squirrel.Or{
			squirrel.ILike{"t.label": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM "+ontologyTermTable+"_name nm WHERE nm.owner_id = t.id AND nm.name ILIKE ?)", pattern),
		}).
		Where(squirrel.Eq{"t.is_valid": true}).
		OrderBy("t.label").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []finto.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("search ontology: %w", postgres.MapError(err))
	}
	out := make([]*finto.OntologyTerm, 0, len(items))
	for _, it := range items {
		out = append(out, &finto.OntologyTerm{Item: it})
	}
	return out, nil
}

// SaveOntologyTerms implements finto.Repository. Term rows go first in one
// batch, then names, descriptions, parent links and exact matches are replaced.
func (r *FintoRepo) SaveOntologyTerms(ctx context.Context, terms []*finto.OntologyTerm) error {
	if len(terms) == 0 {
		return nil
	}
	queries := make([]postgres.BatchQuery, 0, len(terms))
	owners := make([]any, 0, len(terms))
	for _, t := range terms {
		q, err := upsertItem(ontologyTermTable, &t.Item)
		if err != nil {
			return err
		}
		queries = append(queries, q)
		owners = append(owners, t.ID)
	}
	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("upsert ontology terms: %w", err)
	}

	var names, descs, parents, links [][]any
	matches := make([]postgres.BatchQuery, 0)
	for _, t := range terms {
		for _, n := range t.Names {
			names = append(names, []any{t.ID, n.LocalizationID, n.Name})
		}
		for _, d := range t.Descriptions {
			descs = append(descs, []any{t.ID, d.LocalizationID, d.Description})
		}
		for _, p := range t.Parents {
			parents = append(parents, []any{p.ParentID, t.ID})
		}
		for _, em := range t.ExactMatches {
			if em.ExactMatch == nil {
				continue
			}
			q, err := postgres.Queue(postgres.Builder().
				Insert(exactMatchTable).
				Columns("id", "uri").
				Values(em.ExactMatch.ID, em.ExactMatch.URI).
				Suffix("ON CONFLICT (id) DO NOTHING"))
			if err != nil {
				return err
			}
			matches = append(matches, q)
			links = append(links, []any{t.ID, em.ExactMatch.ID})
		}
	}

	if err := r.batch.ReplaceOwned(ctx, ontologyTermTable+"_name", "owner_id", owners, nameCols, names); err != nil {
		return err
	}
	if err := r.batch.ReplaceOwned(ctx, ontologyTermTable+"_description", "owner_id", owners, descriptionCols, descs); err != nil {
		return err
	}
	if err := r.batch.ReplaceOwned(ctx, ontologyParentTable, "child_id", owners, []string{"parent_id", "child_id"}, parents); err != nil {
		return err
	}
	if err := r.batch.ExecuteBatch(ctx, matches); err != nil {
		return fmt.Errorf("upsert exact matches: %w", err)
	}
	return r.batch.ReplaceOwned(ctx, ontologyExactMatchLink, "ontology_term_id", owners,
		[]string{"ontology_term_id", "exact_match_id"}, links)
}

// FindTreeItemByURI implements finto.Repository.
func (r *FintoRepo) FindTreeItemByURI(ctx context.Context, kind finto.TreeKind, uri string) (*finto.TreeItem, error) {
	table, err := treeTable(kind)
	if err != nil {
		return nil, err
	}
	item := &finto.TreeItem{Kind: kind}
	if err := r.getItem(ctx, table, squirrel.Eq{"uri": uri}, &item.Item, uri); err != nil {
		return nil, err
	}
	return item, nil
}

// ListTree implements finto.Repository.
func (r *FintoRepo) ListTree(ctx context.Context, kind finto.TreeKind) ([]*finto.TreeItem, error) {
	table, err := treeTable(kind)
	if err != nil {
		return nil, err
	}

	var rows []finto.Item
	sql, args, err := postgres.Builder().
		Select(itemCols...).
		From(table).
		OrderBy("order_number NULLS LAST", "label").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, postgres.MapError(err))
	}

	items := make([]*finto.TreeItem, 0, len(rows))
	byID := make(map[id.ID]*finto.TreeItem, len(rows))
	for _, row := range rows {
		it := &finto.TreeItem{Item: row, Kind: kind, Names: []*finto.Name{}, Descriptions: []*finto.Description{}}
		items = append(items, it)
		byID[it.ID] = it
	}
	if len(items) == 0 {
		return items, nil
	}

	var names []*finto.Name
	if err := r.selectWhere(ctx, table+"_name", nameCols, squirrel.Expr("TRUE"), &names); err != nil {
		return nil, err
	}
	for _, n := range names {
		if it, ok := byID[n.OwnerID]; ok {
			it.Names = append(it.Names, n)
		}
	}
	var descs []*finto.Description
	if err := r.selectWhere(ctx, table+"_description", descriptionCols, squirrel.Expr("TRUE"), &descs); err != nil {
		return nil, err
	}
	for _, d := range descs {
		if it, ok := byID[d.OwnerID]; ok {
			it.Descriptions = append(it.Descriptions, d)
		}
	}
	return items, nil
}

// SaveTreeItems implements finto.Repository. Items are upserted in the given
// order so that parents exist before their children reference them.
func (r *FintoRepo) SaveTreeItems(ctx context.Context, kind finto.TreeKind, items []*finto.TreeItem) error {
	table, err := treeTable(kind)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	queries := make([]postgres.BatchQuery, 0, len(items))
	owners := make([]any, 0, len(items))
	var names, descs [][]any
	for _, it := range items {
		q, err := upsertItem(table, &it.Item)
		if err != nil {
			return err
		}
		queries = append(queries, q)
		owners = append(owners, it.ID)
		for _, n := range it.Names {
			names = append(names, []any{it.ID, n.LocalizationID, n.Name})
		}
		for _, d := range it.Descriptions {
			descs = append(descs, []any{it.ID, d.LocalizationID, d.Description})
		}
	}
	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	if err := r.batch.ReplaceOwned(ctx, table+"_name", "owner_id", owners, nameCols, names); err != nil {
		return err
	}
	return r.batch.ReplaceOwned(ctx, table+"_description", "owner_id", owners, descriptionCols, descs)
}
