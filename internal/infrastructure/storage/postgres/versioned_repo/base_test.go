package versioned_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	"ptv/internal/domain/filter"
	"ptv/internal/domain/versioned/generaldescription"
	"ptv/internal/domain/versioned/service"
)

func newTestRepo() *BaseVersionedRepo[*service.Service] {
	return NewBaseVersionedRepo[*service.Service](
		nil, "test_table", []string{"id", "col1", "modified"},
		func() *service.Service { return &service.Service{} }, "col1",
	)
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Greater",
			item:     filter.Item{Field: "col1", Operator: filter.Greater, Value: 10},
			wantSQL:  "SELECT t.id, t.col1, t.modified FROM test_table AS t WHERE t.col1 > $1",
			wantArgs: []any{10},
		},
		{
			name:     "Less",
			item:     filter.Item{Field: "col1", Operator: filter.Less, Value: 5},
			wantSQL:  "SELECT t.id, t.col1, t.modified FROM test_table AS t WHERE t.col1 < $1",
			wantArgs: []any{5},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "col1", Operator: filter.Contains, Value: "abc"},
			wantSQL:  "SELECT t.id, t.col1, t.modified FROM test_table AS t WHERE t.col1 ILIKE $1",
			wantArgs: []any{"%abc%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{tt.item})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "col1; DROP TABLE x", Operator: filter.Equal, Value: 1},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	got, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "t.modified DESC", got)

	got, err = repo.parseOrderBy("-col1")
	require.NoError(t, err)
	assert.Equal(t, "t.col1 DESC", got)

	got, err = repo.parseOrderBy("+col1")
	require.NoError(t, err)
	assert.Equal(t, "t.col1 ASC", got)

	_, err = repo.parseOrderBy("name")
	assert.Error(t, err)
}

func TestLatestOnly(t *testing.T) {
	repo := newTestRepo()

	sql, _, err := repo.LatestOnly(repo.baseSelect()).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM test_table n WHERE n.unific_root_id = t.unific_root_id")
}

func TestColumnData_KeepsOnlySelectedColumns(t *testing.T) {
	repo := NewGeneralDescriptionRepo(nil)
	gd := &generaldescription.GeneralDescription{}

	data := repo.columnData(gd)
	assert.Contains(t, data, "id")
	assert.Contains(t, data, "service_class_ids")
	assert.NotContains(t, data, "names")
	assert.Len(t, data, len(repo.selectCols))
}
