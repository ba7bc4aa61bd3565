// Package versioned_repo provides PostgreSQL repositories for the versioned kinds.
// Every kind has a version table plus three owned tables: <table>_name,
// <table>_description and <table>_language_availability, keyed by owner_id.
package versioned_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain"
	"ptv/internal/domain/filter"
	"ptv/internal/infrastructure/storage/postgres"
)

// statusIs matches a publishing status column against a status code.
const statusIs = "%s IN (SELECT id FROM type_code WHERE kind = 'publishing_status' AND code = ?)"

func statusExpr(column, code string) squirrel.Sqlizer {
	return squirrel.Expr(fmt.Sprintf(statusIs, column), code)
}

func notStatusExpr(column, code string) squirrel.Sqlizer {
	return squirrel.Expr(fmt.Sprintf("NOT "+statusIs, column), code)
}

var (
	nameCols         = []string{"owner_id", "localization_id", "type_id", "name"}
	descriptionCols  = []string{"owner_id", "localization_id", "type_id", "description"}
	availabilityCols = postgres.ExtractDBColumns[entity.LanguageAvailability]()
)

// BaseVersionedRepo provides the storage of one versioned kind.
// Embed this in specific repositories.
type BaseVersionedRepo[T entity.LanguageVersioned] struct {
	txm   *postgres.TxManager
	batch *postgres.BatchWriter

	tableName  string
	selectCols []string
	newFn      func() T

	// ownerColumn holds the owning organization; empty when the kind has none
	ownerColumn string
}

// NewBaseVersionedRepo creates a new base repository.
func NewBaseVersionedRepo[T entity.LanguageVersioned](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
	ownerColumn string,
) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{
		txm:         txm,
		batch:       postgres.NewBatchWriter(txm),
		tableName:   tableName,
		selectCols:  selectCols,
		newFn:       newFn,
		ownerColumn: ownerColumn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseVersionedRepo[T]) Builder() squirrel.StatementBuilderType {
	return postgres.Builder()
}

func (r *BaseVersionedRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *BaseVersionedRepo[T]) columnData(e T) map[string]any {
	data := postgres.StructToMap(e)
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// Create inserts a version row and its owned rows.
func (r *BaseVersionedRepo[T]) Create(ctx context.Context, e T) error {
	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(r.columnData(e)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, postgres.MapError(err))
	}
	return r.saveOwned(ctx, e.Aggregate())
}

// Update modifies a version with optimistic locking on row_version and
// replaces its owned rows.
func (r *BaseVersionedRepo[T]) Update(ctx context.Context, e T) error {
	agg := e.Aggregate()
	data := r.columnData(e)
	delete(data, "id")
	delete(data, "row_version")

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(data).
		Set("row_version", squirrel.Expr("row_version + 1")).
		Where(squirrel.Eq{"id": agg.ID}).
		Where(squirrel.Eq{"row_version": agg.RowVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, postgres.MapError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, agg.ID.String())
	}
	agg.RowVersion++
	return r.saveOwned(ctx, agg)
}

func (r *BaseVersionedRepo[T]) saveOwned(ctx context.Context, agg *entity.VersionedAggregate) error {
	owner := []any{agg.ID}

	names := make([][]any, 0, len(agg.Names))
	for _, n := range agg.Names {
		names = append(names, []any{agg.ID, n.LocalizationID, n.TypeID, n.Name})
	}
	if err := r.batch.ReplaceOwned(ctx, r.tableName+"_name", "owner_id", owner, nameCols, names); err != nil {
		return err
	}

	descs := make([][]any, 0, len(agg.Descriptions))
	for _, d := range agg.Descriptions {
		descs = append(descs, []any{agg.ID, d.LocalizationID, d.TypeID, d.Description})
	}
	if err := r.batch.ReplaceOwned(ctx, r.tableName+"_description", "owner_id", owner, descriptionCols, descs); err != nil {
		return err
	}

	las := make([][]any, 0, len(agg.LanguageAvailabilities))
	for _, la := range agg.LanguageAvailabilities {
		row := postgres.StructToMap(la)
		row["owner_id"] = agg.ID
		values := make([]any, len(availabilityCols))
		for i, col := range availabilityCols {
			values[i] = row[col]
		}
		las = append(las, values)
	}
	return r.batch.ReplaceOwned(ctx, r.tableName+"_language_availability", "owner_id", owner, availabilityCols, las)
}

// baseSelect creates a SELECT builder over the version table aliased t.
func (r *BaseVersionedRepo[T]) baseSelect() squirrel.SelectBuilder {
	cols := make([]string, len(r.selectCols))
	for i, c := range r.selectCols {
		cols[i] = "t." + c
	}
	return r.Builder().Select(cols...).From(r.tableName + " AS t")
}

// FindOne executes q and loads the owned rows of the single result.
func (r *BaseVersionedRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key any) (T, error) {
	e := r.newFn()
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.tableName, fmt.Sprint(key))
		}
		return e, fmt.Errorf("get %s: %w", r.tableName, postgres.MapError(err))
	}
	if err := r.loadOwned(ctx, []T{e}); err != nil {
		return e, err
	}
	return e, nil
}

// FindMany executes q and loads the owned rows of every result.
func (r *BaseVersionedRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, postgres.MapError(err))
	}
	if err := r.loadOwned(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID retrieves a version by id.
func (r *BaseVersionedRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"t.id": entityID}), entityID)
}

// GetLatest retrieves the version with the highest number of a root.
func (r *BaseVersionedRepo[T]) GetLatest(ctx context.Context, rootID id.ID) (T, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"t.unific_root_id": rootID}).
		OrderBy("t.version_major DESC", "t.version_minor DESC")
	return r.FindOne(ctx, q, rootID)
}

// GetLastPublished retrieves the published version of a root.
func (r *BaseVersionedRepo[T]) GetLastPublished(ctx context.Context, rootID id.ID) (T, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"t.unific_root_id": rootID}).
		Where(statusExpr("t.publishing_status_id", "Published")).
		OrderBy("t.version_major DESC", "t.version_minor DESC")
	return r.FindOne(ctx, q, rootID)
}

// ListVersions retrieves every version of a root, oldest first.
func (r *BaseVersionedRepo[T]) ListVersions(ctx context.Context, rootID id.ID) ([]T, error) {
	return r.FindMany(ctx, r.baseSelect().
		Where(squirrel.Eq{"t.unific_root_id": rootID}).
		OrderBy("t.version_major ASC", "t.version_minor ASC"))
}

// RootExists reports whether any live version of the root exists.
func (r *BaseVersionedRepo[T]) RootExists(ctx context.Context, rootID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+r.tableName+" t WHERE t.unific_root_id = ? AND "+
				fmt.Sprintf("NOT "+statusIs, "t.publishing_status_id")+")",
			rootID, "Deleted",
		)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("root exists: %w", postgres.MapError(err))
	}
	return exists, nil
}

// LatestOnly restricts q to the newest version of every root.
func (r *BaseVersionedRepo[T]) LatestOnly(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.Where("NOT EXISTS (SELECT 1 FROM " + r.tableName + " n WHERE n.unific_root_id = t.unific_root_id" +
		" AND (n.version_major, n.version_minor) > (t.version_major, t.version_minor))")
}

// List retrieves versions with filtering and pagination.
func (r *BaseVersionedRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect()

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("EXISTS (SELECT 1 FROM "+r.tableName+"_name nm WHERE nm.owner_id = t.id AND nm.name ILIKE ?)", pattern)
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"t.id": f.IDs})
	}
	if len(f.OrganizationIDs) > 0 && r.ownerColumn != "" {
		q = q.Where(squirrel.Eq{"t." + r.ownerColumn: f.OrganizationIDs})
	}
	if len(f.StatusIDs) > 0 {
		q = q.Where(squirrel.Eq{"t.publishing_status_id": f.StatusIDs})
	}
	if f.LatestOnly {
		q = r.LatestOnly(q)
	}

	var err error
	q, err = r.applyAdvancedFilters(q, f.AdvancedFilters)
	if err != nil {
		return result, err
	}

	// Count total (before pagination)
	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", postgres.MapError(err))
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "t.id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	result.Items, err = r.FindMany(ctx, q)
	if err != nil {
		return result, err
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

// ListScheduled retrieves live versions with a language whose ValidFrom has
// passed while the version is not published, or whose ValidTo has passed.
func (r *BaseVersionedRepo[T]) ListScheduled(ctx context.Context, now time.Time) ([]T, error) {
	q := r.baseSelect().
		Where(notStatusExpr("t.publishing_status_id", "Deleted")).
		Where(notStatusExpr("t.publishing_status_id", "OldPublished")).
		Where(squirrel.Or{
			squirrel.And{
				notStatusExpr("t.publishing_status_id", "Published"),
				squirrel.Expr("EXISTS (SELECT 1 FROM "+r.tableName+"_language_availability la WHERE la.owner_id = t.id AND la.valid_from <= ?)", now),
			},
			squirrel.Expr("EXISTS (SELECT 1 FROM "+r.tableName+"_language_availability la WHERE la.owner_id = t.id AND la.valid_to <= ?)", now),
		}).
		OrderBy("t.modified ASC")
	return r.FindMany(ctx, q)
}

// loadOwned fills names, descriptions and availabilities of items.
func (r *BaseVersionedRepo[T]) loadOwned(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[id.ID]*entity.VersionedAggregate, len(items))
	ids := make([]id.ID, 0, len(items))
	for _, e := range items {
		agg := e.Aggregate()
		agg.Names = []*entity.LocalizedName{}
		agg.Descriptions = []*entity.LocalizedDescription{}
		agg.LanguageAvailabilities = []*entity.LanguageAvailability{}
		byID[agg.ID] = agg
		ids = append(ids, agg.ID)
	}

	var names []*entity.LocalizedName
	if err := r.selectOwned(ctx, r.tableName+"_name", nameCols, ids, &names); err != nil {
		return err
	}
	for _, n := range names {
		if agg, ok := byID[n.OwnerID]; ok {
			agg.Names = append(agg.Names, n)
		}
	}

	var descs []*entity.LocalizedDescription
	if err := r.selectOwned(ctx, r.tableName+"_description", descriptionCols, ids, &descs); err != nil {
		return err
	}
	for _, d := range descs {
		if agg, ok := byID[d.OwnerID]; ok {
			agg.Descriptions = append(agg.Descriptions, d)
		}
	}

	var las []*entity.LanguageAvailability
	if err := r.selectOwned(ctx, r.tableName+"_language_availability", availabilityCols, ids, &las); err != nil {
		return err
	}
	for _, la := range las {
		if agg, ok := byID[la.OwnerID]; ok {
			agg.LanguageAvailabilities = append(agg.LanguageAvailabilities, la)
		}
	}
	return nil
}

func (r *BaseVersionedRepo[T]) selectOwned(ctx context.Context, table string, cols []string, ids []id.ID, dst any) error {
	sql, args, err := r.Builder().
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"owner_id": ids}).
		OrderBy("owner_id", "localization_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", table, err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("load %s: %w", table, postgres.MapError(err))
	}
	return nil
}

// applyAdvancedFilters applies column conditions from the list filter.
func (r *BaseVersionedRepo[T]) applyAdvancedFilters(q squirrel.SelectBuilder, filters []filter.Item) (squirrel.SelectBuilder, error) {
	// Whitelist columns for SQL injection protection
	validCols := make(map[string]bool, len(r.selectCols))
	for _, col := range r.selectCols {
		validCols[col] = true
	}

	for _, item := range filters {
		if !validCols[item.Field] {
			return q, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}
		field := "t." + item.Field

		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{field: item.Value})
		case filter.NotEqual, filter.NotInList:
			q = q.Where(squirrel.NotEq{field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{field: nil})
		case filter.Contains:
			q = q.Where(squirrel.ILike{field: fmt.Sprintf("%%%v%%", item.Value)})
		case filter.NotContains:
			q = q.Where(squirrel.NotILike{field: fmt.Sprintf("%%%v%%", item.Value)})
		default:
			return q, apperror.NewValidation("unsupported filter operator").WithDetail("operator", string(item.Operator))
		}
	}

	return q, nil
}

func (r *BaseVersionedRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "t.modified DESC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if _, ok := allowed[field]; !ok || field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	return "t." + field + " " + direction, nil
}
