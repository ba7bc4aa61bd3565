package reference_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/domain/types"
	"ptv/internal/infrastructure/storage/postgres"
)

const typeCodeTable = "type_code"

// TypeRepo reads and seeds the type_code table behind the types cache.
type TypeRepo struct {
	txm   *postgres.TxManager
	batch *postgres.BatchWriter
}

// NewTypeRepo creates a new type code repository.
func NewTypeRepo(txm *postgres.TxManager) *TypeRepo {
	return &TypeRepo{txm: txm, batch: postgres.NewBatchWriter(txm)}
}

// LoadTypes returns every type code ordered by kind and order number.
func (r *TypeRepo) LoadTypes(ctx context.Context) ([]types.Type, error) {
	sql, args, err := postgres.Builder().
		Select("kind", "id", "code", "order_number").
		From(typeCodeTable).
		OrderBy("kind", "order_number", "code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []types.Type
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load types: %w", postgres.MapError(err))
	}
	return rows, nil
}

// Seed upserts rows by (kind, code). Existing ids are kept so references stay valid.
func (r *TypeRepo) Seed(ctx context.Context, rows []types.Type) error {
	queries := make([]postgres.BatchQuery, 0, len(rows))
	for _, t := range rows {
		q, err := postgres.Queue(postgres.Builder().
			Insert(typeCodeTable).
			Columns("kind", "id", "code", "order_number").
			Values(string(t.Kind), t.ID, t.Code, t.OrderNumber).
			Suffix("ON CONFLICT (kind, code) DO UPDATE SET order_number = EXCLUDED.order_number"))
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	return r.batch.ExecuteBatch(ctx, queries)
}
