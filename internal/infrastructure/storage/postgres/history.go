package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"ptv/internal/core/id"
	"ptv/internal/domain"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const historyTable = "version_history"

// historyRow is the stored form of domain.HistoryEntry.
type historyRow struct {
	ID                 id.ID           `db:"id"`
	EntityType         string          `db:"entity_type"`
	RootID             id.ID           `db:"root_id"`
	VersionID          id.ID           `db:"version_id"`
	Action             string          `db:"action"`
	Version            string          `db:"version"`
	Status             string          `db:"status"`
	UserID             string          `db:"user_id"`
	Snapshot           []byte          `db:"snapshot"`
	SnapshotCompressed []byte          `db:"snapshot_compressed"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo"`
	CreatedAt          time.Time       `db:"created_at"`
}

// HistoryRecorder stores lifecycle history; snapshots above the threshold are
// zstd-compressed.
type HistoryRecorder struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes, default 4KB
}

var _ domain.HistoryRecorder = (*HistoryRecorder)(nil)

// NewHistoryRecorder creates a new recorder.
func NewHistoryRecorder(txManager *TxManager) (*HistoryRecorder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &HistoryRecorder{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

func (r *HistoryRecorder) encode(entry domain.HistoryEntry) historyRow {
	row := historyRow{
		ID:              entry.ID,
		EntityType:      entry.EntityType,
		RootID:          entry.RootID,
		VersionID:       entry.VersionID,
		Action:          entry.Action,
		Version:         entry.Version,
		Status:          entry.Status,
		UserID:          entry.UserID,
		Snapshot:        entry.Snapshot,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.CreatedAt,
	}
	if id.IsNil(row.ID) {
		row.ID = id.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if len(entry.Snapshot) > r.compressThreshold {
		row.SnapshotCompressed = r.encoder.EncodeAll(entry.Snapshot, nil)
		row.Snapshot = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

func (r *HistoryRecorder) decode(row historyRow) (domain.HistoryEntry, error) {
	snapshot := row.Snapshot
	if row.CompressionAlgo == CompressionZstd && len(row.SnapshotCompressed) > 0 {
		var err error
		snapshot, err = r.decoder.DecodeAll(row.SnapshotCompressed, nil)
		if err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("decompress snapshot: %w", err)
		}
	}
	return domain.HistoryEntry{
		ID:         row.ID,
		EntityType: row.EntityType,
		RootID:     row.RootID,
		VersionID:  row.VersionID,
		Action:     row.Action,
		Version:    row.Version,
		Status:     row.Status,
		UserID:     row.UserID,
		CreatedAt:  row.CreatedAt,
		Snapshot:   snapshot,
	}, nil
}

// Record implements domain.HistoryRecorder.
func (r *HistoryRecorder) Record(ctx context.Context, entry domain.HistoryEntry) error {
	row := r.encode(entry)
	query, args, err := psql.Insert(historyTable).SetMap(StructToMap(row)).ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history: %w", MapError(err))
	}
	return nil
}

// List implements domain.HistoryRecorder.
func (r *HistoryRecorder) List(ctx context.Context, entityType string, rootID id.ID) ([]domain.HistoryEntry, error) {
	query, args, err := psql.Select(ExtractDBColumns[historyRow]()...).
		From(historyTable).
		Where(sq.Eq{"entity_type": entityType, "root_id": rootID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []historyRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", MapError(err))
	}

	out := make([]domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		e, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
