package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ptv/internal/core/entity"
	"ptv/internal/core/id"
)

type testVersioned struct {
	entity.VersionedAggregate
	BusinessCode string `db:"business_code"`
	Secret       string `db:"-"`
	Untagged     string
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[testVersioned]()

	for _, expected := range []string{
		"id", "unific_root_id", "publishing_status_id", "version_major",
		"version_minor", "previous_version_id", "row_version",
		"created", "modified_by", "business_code",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "names")
	assert.NotContains(t, cols, "-")
	assert.Equal(t, "business_code", cols[len(cols)-1])
}

func TestStructToMap_MatchesColumns(t *testing.T) {
	root := id.New()
	v := &testVersioned{BusinessCode: "0245437-2", Secret: "x"}
	v.ID = root
	v.UnificRootID = root
	v.VersionMajor = 2

	m := StructToMap(v)

	assert.Equal(t, root, m["id"])
	assert.Equal(t, 2, m["version_major"])
	assert.Equal(t, "0245437-2", m["business_code"])
	assert.NotContains(t, m, "Secret")
	assert.Len(t, m, len(ExtractDBColumns[testVersioned]()))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap((*testVersioned)(nil)))
}
