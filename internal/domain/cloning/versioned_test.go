package cloning

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/entity"
	"ptv/internal/core/id"
)

type sampleKind struct {
	entity.VersionedAggregate
	Tags []string
}

func TestAggregateCloner_Clone(t *testing.T) {
	failed := time.Now().UTC()
	prev := id.New()
	src := &entity.VersionedAggregate{
		VersionedEntity: entity.NewVersionedEntity(id.New(), "eeva"),
		Names:           []*entity.LocalizedName{{Name: "Palvelu"}},
		LanguageAvailabilities: []*entity.LanguageAvailability{
			{LanguageID: id.New(), LastFailedPublishAt: &failed},
		},
	}
	src.PreviousVersionID = &prev

	dst := DefaultAggregateCloner().Clone(src)

	require.NotNil(t, dst)
	assert.Equal(t, src.VersionedEntity.ID, dst.VersionedEntity.ID)
	assert.Equal(t, src.VersionInfo.VersionMinor, dst.VersionInfo.VersionMinor)
	assert.NotSame(t, src.PreviousVersionID, dst.PreviousVersionID)
	assert.NotNil(t, dst.Descriptions)
	require.Len(t, dst.LanguageAvailabilities, 1)
	assert.NotSame(t, src.LanguageAvailabilities[0], dst.LanguageAvailabilities[0])
	assert.NotSame(t, src.LanguageAvailabilities[0].LastFailedPublishAt, dst.LanguageAvailabilities[0].LastFailedPublishAt)
	assert.True(t, failed.Equal(*dst.LanguageAvailabilities[0].LastFailedPublishAt))
}

func TestKind(t *testing.T) {
	c := Kind(DefaultAggregateCloner(),
		func(s *sampleKind) *entity.VersionedAggregate { return &s.VersionedAggregate },
		func(dst, src *sampleKind) {
			*dst = *src
			dst.Tags = slices.Clone(src.Tags)
		})

	src := &sampleKind{
		VersionedAggregate: entity.VersionedAggregate{
			VersionedEntity: entity.NewVersionedEntity(id.New(), "eeva"),
			Names:           []*entity.LocalizedName{{Name: "A"}},
		},
		Tags: []string{"x"},
	}
	dst := c.Clone(src)

	dst.Tags[0] = "y"
	dst.Names[0].Name = "B"
	assert.Equal(t, "x", src.Tags[0])
	assert.Equal(t, "A", src.Names[0].Name)
	assert.Equal(t, src.VersionedEntity.ID, dst.VersionedEntity.ID)
}

func TestNewAggregateCloner_MissingSlot(t *testing.T) {
	_, err := NewAggregateCloner(AggregateClonerConfig{Names: Value[entity.LocalizedName]()})
	assert.ErrorIs(t, err, ErrMissingSubCloner)
}
