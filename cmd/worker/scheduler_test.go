package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/versioned/channel"
	"ptv/pkg/logger"
)

type mockScheduled struct {
	mock.Mock
}

func (m *mockScheduled) ListScheduled(ctx context.Context) ([]*channel.Channel, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*channel.Channel)
	return items, args.Error(1)
}

func (m *mockScheduled) Publish(ctx context.Context, v id.ID, languages []id.ID) (*channel.Channel, error) {
	args := m.Called(ctx, v, languages)
	return nil, args.Error(1)
}

func (m *mockScheduled) Archive(ctx context.Context, v id.ID) (*channel.Channel, error) {
	args := m.Called(ctx, v)
	return nil, args.Error(1)
}

func scheduledChannel(availabilities ...*entity.LanguageAvailability) *channel.Channel {
	c := &channel.Channel{}
	c.ID = id.New()
	c.LanguageAvailabilities = availabilities
	return c
}

func at(t time.Time) *time.Time { return &t }

func testScheduler(now time.Time, svc *mockScheduled) *Scheduler {
	s := NewScheduler(time.Minute, logger.Default(), newJob[*channel.Channel]("channel", svc))
	s.now = func() time.Time { return now }
	return s
}

func TestScheduler_PublishesDueLanguages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fi, sv := id.New(), id.New()
	c := scheduledChannel(
		&entity.LanguageAvailability{LanguageID: fi, ValidFrom: at(now.Add(-time.Hour))},
		&entity.LanguageAvailability{LanguageID: sv, ValidFrom: at(now.Add(time.Hour))},
	)

	svc := &mockScheduled{}
	svc.On("ListScheduled", mock.Anything).Return([]*channel.Channel{c}, nil).Once()
	svc.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		user := appctx.GetUser(ctx)
		return user != nil && user.IsAdmin && user.UserID == schedulerUser
	}), c.ID, []id.ID{fi}).Return(nil, nil).Once()

	out := testScheduler(now, svc).RunOnce(context.Background())

	assert.Equal(t, Outcome{Published: 1}, out)
	svc.AssertExpectations(t)
}

func TestScheduler_ExpiredVersionIsArchived(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := scheduledChannel(
		&entity.LanguageAvailability{LanguageID: id.New(), ValidFrom: at(now.Add(-48 * time.Hour))},
		&entity.LanguageAvailability{LanguageID: id.New(), ValidTo: at(now)},
	)

	svc := &mockScheduled{}
	svc.On("ListScheduled", mock.Anything).Return([]*channel.Channel{c}, nil).Once()
	svc.On("Archive", mock.Anything, c.ID).Return(nil, nil).Once()

	out := testScheduler(now, svc).RunOnce(context.Background())

	assert.Equal(t, Outcome{Archived: 1}, out)
	svc.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}

func TestScheduler_FailureDoesNotStopPass(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lang := id.New()
	first := scheduledChannel(&entity.LanguageAvailability{LanguageID: lang, ValidFrom: at(now)})
	second := scheduledChannel(&entity.LanguageAvailability{LanguageID: lang, ValidFrom: at(now)})

	svc := &mockScheduled{}
	svc.On("ListScheduled", mock.Anything).Return([]*channel.Channel{first, second}, nil).Once()
	svc.On("Publish", mock.Anything, first.ID, []id.ID{lang}).Return(nil, errors.New("rules failed")).Once()
	svc.On("Publish", mock.Anything, second.ID, []id.ID{lang}).Return(nil, nil).Once()

	out := testScheduler(now, svc).RunOnce(context.Background())

	assert.Equal(t, Outcome{Published: 1, Failed: 1}, out)
	svc.AssertExpectations(t)
}

func TestScheduler_ListErrorIsLogged(t *testing.T) {
	svc := &mockScheduled{}
	svc.On("ListScheduled", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	out := testScheduler(time.Now(), svc).RunOnce(context.Background())

	assert.Equal(t, Outcome{}, out)
	svc.AssertExpectations(t)
}

func TestDueLanguages(t *testing.T) {
	now := time.Now()
	lang := id.New()

	expired, due := dueLanguages(nil, now)
	assert.False(t, expired)
	assert.Empty(t, due)

	expired, due = dueLanguages([]*entity.LanguageAvailability{
		{LanguageID: lang, ValidFrom: at(now.Add(-time.Minute)), ValidTo: at(now.Add(time.Hour))},
	}, now)
	assert.False(t, expired)
	require.Len(t, due, 1)
	assert.Equal(t, lang, due[0])
}
