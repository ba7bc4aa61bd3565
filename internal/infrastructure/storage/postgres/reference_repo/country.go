package reference_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/domain/country"
	"ptv/internal/infrastructure/storage/postgres"
)

const (
	countryTable     = "country"
	dialCodeTable    = "dial_code"
	countryNameTable = "country_name"
)

var (
	countryCols     = postgres.ExtractDBColumns[country.Country]()
	dialCodeCols    = postgres.ExtractDBColumns[country.DialCode]()
	countryNameCols = postgres.ExtractDBColumns[country.CountryName]()
)

// CountryRepo implements country.Repository.
type CountryRepo struct {
	txm   *postgres.TxManager
	batch *postgres.BatchWriter
}

// NewCountryRepo creates a new country repository.
func NewCountryRepo(txm *postgres.TxManager) *CountryRepo {
	return &CountryRepo{txm: txm, batch: postgres.NewBatchWriter(txm)}
}

// FindByCode implements country.Repository.
func (r *CountryRepo) FindByCode(ctx context.Context, code string) (*country.Country, error) {
	sql, args, err := postgres.Builder().
		Select(countryCols...).
		From(countryTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c := &country.Country{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(countryTable, code)
		}
		return nil, fmt.Errorf("get country: %w", postgres.MapError(err))
	}
	if err := r.loadChildren(ctx, []*country.Country{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// List implements country.Repository.
func (r *CountryRepo) List(ctx context.Context) ([]*country.Country, error) {
	sql, args, err := postgres.Builder().
		Select(countryCols...).
		From(countryTable).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*country.Country
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list countries: %w", postgres.MapError(err))
	}
	if out == nil {
		out = []*country.Country{}
	}
	return out, r.loadChildren(ctx, out)
}

func (r *CountryRepo) loadChildren(ctx context.Context, countries []*country.Country) error {
	if len(countries) == 0 {
		return nil
	}
	byID := make(map[id.ID]*country.Country, len(countries))
	ids := make([]id.ID, 0, len(countries))
	for _, c := range countries {
		c.DialCodes = []*country.DialCode{}
		c.Names = []*country.CountryName{}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	var dialCodes []*country.DialCode
	if err := r.selectByCountry(ctx, dialCodeTable, dialCodeCols, ids, &dialCodes); err != nil {
		return err
	}
	for _, dc := range dialCodes {
		if dc.CountryID != nil {
			if c, ok := byID[*dc.CountryID]; ok {
				c.DialCodes = append(c.DialCodes, dc)
			}
		}
	}

	var names []*country.CountryName
	if err := r.selectByCountry(ctx, countryNameTable, countryNameCols, ids, &names); err != nil {
		return err
	}
	for _, n := range names {
		if n.CountryID != nil {
			if c, ok := byID[*n.CountryID]; ok {
				c.Names = append(c.Names, n)
			}
		}
	}
	return nil
}

func (r *CountryRepo) selectByCountry(ctx context.Context, table string, cols []string, ids []id.ID, dst any) error {
	sql, args, err := postgres.Builder().
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"country_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("load %s: %w", table, postgres.MapError(err))
	}
	return nil
}

// Save implements country.Repository. The country row is upserted, dial codes
// no longer listed are removed and names are replaced.
func (r *CountryRepo) Save(ctx context.Context, c *country.Country) error {
	c.PrepareInsert()

	queries := make([]postgres.BatchQuery, 0, len(c.DialCodes)+2)
	q, err := postgres.Queue(postgres.Builder().
		Insert(countryTable).
		SetMap(postgres.StructToMap(c)).
		Suffix("ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, modified = EXCLUDED.modified, modified_by = EXCLUDED.modified_by"))
	if err != nil {
		return err
	}
	queries = append(queries, q)

	keep := make([]id.ID, 0, len(c.DialCodes))
	for _, dc := range c.DialCodes {
		keep = append(keep, dc.ID)
	}
	q, err = postgres.Queue(postgres.Builder().
		Delete(dialCodeTable).
		Where(squirrel.Eq{"country_id": c.ID}).
		Where(squirrel.NotEq{"id": keep}))
	if err != nil {
		return err
	}
	queries = append(queries, q)

	for _, dc := range c.DialCodes {
		q, err := postgres.Queue(postgres.Builder().
			Insert(dialCodeTable).
			SetMap(postgres.StructToMap(dc)).
			Suffix("ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code"))
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("save country %s: %w", c.Code, err)
	}

	rows := make([][]any, 0, len(c.Names))
	for _, n := range c.Names {
		rows = append(rows, []any{c.ID, n.LocalizationID, n.Name})
	}
	return r.batch.ReplaceOwned(ctx, countryNameTable, "country_id", []any{c.ID}, countryNameCols, rows)
}
