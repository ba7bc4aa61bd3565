package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/id"
	"ptv/internal/domain"
)

func TestHistoryRecorder_CompressesLargeSnapshots(t *testing.T) {
	r, err := NewHistoryRecorder(nil)
	require.NoError(t, err)

	small := domain.HistoryEntry{EntityType: "service", RootID: id.New(), Snapshot: []byte(`{"id":"x"}`)}
	row := r.encode(small)
	assert.Equal(t, CompressionNone, row.CompressionAlgo)
	assert.Equal(t, small.Snapshot, row.Snapshot)
	assert.False(t, id.IsNil(row.ID))
	assert.False(t, row.CreatedAt.IsZero())

	large := small
	large.Snapshot = bytes.Repeat([]byte(`{"name":"Kirjastopalvelut"},`), 500)
	row = r.encode(large)
	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.Snapshot)
	assert.Less(t, len(row.SnapshotCompressed), len(large.Snapshot))

	back, err := r.decode(row)
	require.NoError(t, err)
	assert.Equal(t, large.Snapshot, back.Snapshot)
	assert.Equal(t, large.RootID, back.RootID)
}

func TestHistoryRecorder_DecodeCorrupt(t *testing.T) {
	r, err := NewHistoryRecorder(nil)
	require.NoError(t, err)

	_, err = r.decode(historyRow{CompressionAlgo: CompressionZstd, SnapshotCompressed: []byte("not zstd")})
	assert.Error(t, err)
}
