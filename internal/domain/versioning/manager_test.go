package versioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/types"
)

var (
	cache = types.NewSnapshot(types.SeedRows())
	fi    = types.SeedID(types.KindLanguage, "fi")
	sv    = types.SeedID(types.KindLanguage, "sv")
)

func status(code string) id.ID {
	return types.SeedID(types.KindPublishingStatus, code)
}

func newAggregate(langs ...id.ID) *entity.VersionedAggregate {
	agg := &entity.VersionedAggregate{VersionedEntity: entity.NewVersionedEntity(status(types.StatusDraft), "eeva")}
	for _, l := range langs {
		agg.LanguageAvailabilities = append(agg.LanguageAvailabilities, &entity.LanguageAvailability{
			OwnerID: agg.ID, LanguageID: l, StatusID: status(types.StatusDraft),
		})
	}
	return agg
}

func TestChangeStatusOfLanguageVersion_LastFailedPublishDateIsRemoved(t *testing.T) {
	agg := newAggregate(fi)
	failed := time.Now().Add(-time.Hour)
	agg.LanguageAvailabilities[0].LastFailedPublishAt = &failed
	m := NewManager(cache)

	err := m.ChangeStatusOfLanguageVersion(context.Background(), agg, []LanguageStatusUpdate{
		{LanguageID: fi, StatusCode: types.StatusPublished},
	})

	require.NoError(t, err)
	assert.Nil(t, agg.LanguageAvailabilities[0].LastFailedPublishAt)
	assert.Equal(t, status(types.StatusPublished), agg.LanguageAvailabilities[0].StatusID)
}

func TestChangeStatusOfLanguageVersion_ClearsForEveryStatus(t *testing.T) {
	for _, code := range []string{types.StatusDraft, types.StatusModified, types.StatusDeleted} {
		t.Run(code, func(t *testing.T) {
			agg := newAggregate(fi)
			failed := time.Now()
			agg.LanguageAvailabilities[0].LastFailedPublishAt = &failed

			err := NewManager(cache).ChangeStatusOfLanguageVersion(context.Background(), agg,
				[]LanguageStatusUpdate{{LanguageID: fi, StatusCode: code}})

			require.NoError(t, err)
			assert.Nil(t, agg.LanguageAvailabilities[0].LastFailedPublishAt)
		})
	}
}

func TestChangeStatusOfLanguageVersion_AppendsMissingLanguage(t *testing.T) {
	agg := newAggregate(fi)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(cache).WithClock(func() time.Time { return clock })
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "pete"})

	err := m.ChangeStatusOfLanguageVersion(ctx, agg, []LanguageStatusUpdate{
		{LanguageID: sv, StatusCode: types.StatusModified, ValidFrom: &from},
	})

	require.NoError(t, err)
	require.Len(t, agg.LanguageAvailabilities, 2)
	la := agg.Availability(sv)
	require.NotNil(t, la)
	assert.Equal(t, agg.ID, la.OwnerID)
	assert.Equal(t, status(types.StatusModified), la.StatusID)
	assert.Equal(t, from, *la.ValidFrom)
	assert.Equal(t, clock, la.Modified)
	assert.Equal(t, "pete", la.ModifiedBy)
	assert.Equal(t, status(types.StatusDraft), agg.Availability(fi).StatusID)
}

func TestChangeStatusOfLanguageVersion_UnknownStatusChangesNothing(t *testing.T) {
	agg := newAggregate(fi, sv)
	failed := time.Now()
	agg.LanguageAvailabilities[0].LastFailedPublishAt = &failed

	err := NewManager(cache).ChangeStatusOfLanguageVersion(context.Background(), agg, []LanguageStatusUpdate{
		{LanguageID: fi, StatusCode: types.StatusPublished},
		{LanguageID: sv, StatusCode: "Archived"},
	})

	require.ErrorIs(t, err, types.ErrUnknownType)
	assert.NotNil(t, agg.LanguageAvailabilities[0].LastFailedPublishAt)
	assert.Equal(t, status(types.StatusDraft), agg.LanguageAvailabilities[0].StatusID)
}

func TestMarkPublishFailed(t *testing.T) {
	agg := newAggregate(fi)
	at := time.Now()

	NewManager(cache).MarkPublishFailed(agg, []id.ID{fi, sv}, at)

	require.NotNil(t, agg.Availability(fi).LastFailedPublishAt)
	assert.Equal(t, at, *agg.Availability(fi).LastFailedPublishAt)
	assert.Nil(t, agg.Availability(sv))
}

func TestDeriveEntityStatus(t *testing.T) {
	m := NewManager(cache)
	agg := newAggregate(fi, sv)

	got, err := m.DeriveEntityStatus(agg)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, got)

	agg.Availability(sv).StatusID = status(types.StatusPublished)
	got, err = m.DeriveEntityStatus(agg)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPublished, got)

	empty := newAggregate()
	got, err = m.DeriveEntityStatus(empty)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, got)
}

func TestSetEntityStatus(t *testing.T) {
	m := NewManager(cache)
	agg := newAggregate(fi)

	require.NoError(t, m.SetEntityStatus(agg, types.StatusPublished))
	assert.Equal(t, status(types.StatusPublished), agg.PublishingStatusID)

	require.NoError(t, m.SetEntityStatus(agg, types.StatusOldPublished))
	err := m.SetEntityStatus(agg, types.StatusPublished)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{types.StatusDraft, types.StatusPublished, true},
		{types.StatusDraft, types.StatusOldPublished, false},
		{types.StatusModified, types.StatusPublished, true},
		{types.StatusModified, types.StatusDraft, false},
		{types.StatusPublished, types.StatusOldPublished, true},
		{types.StatusPublished, types.StatusDraft, false},
		{types.StatusDeleted, types.StatusModified, true},
		{types.StatusDeleted, types.StatusPublished, false},
		{types.StatusOldPublished, types.StatusModified, false},
		{types.StatusPublished, types.StatusPublished, true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestVersionNumbers(t *testing.T) {
	prev := id.New()
	v := entity.VersionInfo{VersionMajor: 1, VersionMinor: 3, PreviousVersionID: &prev}

	assert.Equal(t, "1.4", String(NextMinor(v)))
	assert.Nil(t, NextMinor(v).PreviousVersionID)
	assert.Equal(t, "2.0", String(NextMajor(v)))
}

func TestLanguageStatus(t *testing.T) {
	agg := newAggregate(fi)
	m := NewManager(cache)

	code, err := m.LanguageStatus(agg, fi)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, code)

	code, err = m.LanguageStatus(agg, sv)
	require.NoError(t, err)
	assert.Empty(t, code)
}
