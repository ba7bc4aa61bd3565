package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func Builder() sq.StatementBuilderType {
	return psql
}

// BatchWriter writes many rows of one unit of work in few round-trips.
// Every method requires a transaction in ctx.
type BatchWriter struct {
	txManager *TxManager
}

// NewBatchWriter creates a new batch writer.
func NewBatchWriter(txManager *TxManager) *BatchWriter {
	return &BatchWriter{txManager: txManager}
}

// CopyFromSlice performs bulk insert using the COPY protocol.
func (b *BatchWriter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, MapError(err))
	}
	return n, nil
}

// ReplaceOwned deletes the rows of owners from table and inserts rows in their place.
func (b *BatchWriter) ReplaceOwned(ctx context.Context, table, ownerColumn string, owners []any, columns []string, rows [][]any) error {
	if len(owners) > 0 {
		query, args, err := psql.Delete(table).Where(sq.Eq{ownerColumn: owners}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := b.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, MapError(err))
		}
	}
	_, err := b.CopyFromSlice(ctx, table, columns, rows)
	return err
}

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// Queue builds a BatchQuery from a squirrel builder.
func Queue(b sq.Sqlizer) (BatchQuery, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return BatchQuery{}, err
	}
	return BatchQuery{SQL: query, Args: args}, nil
}

// ExecuteBatch executes multiple statements in a single round-trip.
func (b *BatchWriter) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("ExecuteBatch requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, MapError(err))
		}
	}
	return nil
}
