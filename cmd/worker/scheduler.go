package main

import (
	"context"
	"sync"
	"time"

	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain"
	"ptv/pkg/logger"
)

// schedulerUser is recorded as the modifier of scheduled transitions.
const schedulerUser = "scheduler"

// Scheduled is the part of a versioned service the scheduler drives.
type Scheduled[T domain.Versioned] interface {
	ListScheduled(ctx context.Context) ([]T, error)
	Publish(ctx context.Context, versionID id.ID, languages []id.ID) (T, error)
	Archive(ctx context.Context, versionID id.ID) (T, error)
}

// Outcome counts the transitions of one pass.
type Outcome struct {
	Published int
	Archived  int
	Failed    int
}

func (o *Outcome) add(other Outcome) {
	o.Published += other.Published
	o.Archived += other.Archived
	o.Failed += other.Failed
}

// job processes the due versions of one entity kind.
type job interface {
	kind() string
	run(ctx context.Context, now time.Time) (Outcome, error)
}

type kindJob[T domain.Versioned] struct {
	name string
	svc  Scheduled[T]
}

func newJob[T domain.Versioned](name string, svc Scheduled[T]) job {
	return &kindJob[T]{name: name, svc: svc}
}

func (j *kindJob[T]) kind() string { return j.name }

// run archives versions with an expired language and publishes the due
// languages of the others. A failing version does not stop the pass.
func (j *kindJob[T]) run(ctx context.Context, now time.Time) (Outcome, error) {
	var out Outcome

	items, err := j.svc.ListScheduled(ctx)
	if err != nil {
		return out, err
	}

	for _, e := range items {
		agg := e.Aggregate()
		expired, due := dueLanguages(agg.LanguageAvailabilities, now)

		switch {
		case expired:
			if _, err := j.svc.Archive(ctx, agg.ID); err != nil {
				out.Failed++
				logger.Warn(ctx, "scheduled archive failed", "kind", j.name, "id", agg.ID, "error", err)
				continue
			}
			out.Archived++
		case len(due) > 0:
			if _, err := j.svc.Publish(ctx, agg.ID, due); err != nil {
				out.Failed++
				logger.Warn(ctx, "scheduled publish failed", "kind", j.name, "id", agg.ID, "error", err)
				continue
			}
			out.Published++
		}
	}
	return out, nil
}

// dueLanguages reports whether any language expired and lists the languages due for publishing.
func dueLanguages(availabilities []*entity.LanguageAvailability, now time.Time) (bool, []id.ID) {
	var due []id.ID
	for _, la := range availabilities {
		if la.IsExpired(now) {
			return true, nil
		}
		if la.IsDue(now) {
			due = append(due, la.LanguageID)
		}
	}
	return false, due
}

// Scheduler publishes and archives versions on their ValidFrom and ValidTo.
type Scheduler struct {
	jobs     []job
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger

	running sync.Mutex
}

// NewScheduler creates a scheduler that runs every interval.
func NewScheduler(interval time.Duration, log *logger.Logger, jobs ...job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.WithComponent("scheduler"),
	}
}

// Run processes once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every job as the scheduler administrator. Overlapping passes are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) Outcome {
	var total Outcome
	if !s.running.TryLock() {
		s.log.Debug("previous pass still running, skipping")
		return total
	}
	defer s.running.Unlock()

	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:  schedulerUser,
		Roles:   []string{appctx.RoleEeva},
		IsAdmin: true,
	})
	ctx = logger.WithLogger(ctx, s.log)

	now := s.now()
	for _, j := range s.jobs {
		out, err := j.run(ctx, now)
		if err != nil {
			s.log.Errorw("scheduled pass failed", "kind", j.kind(), "error", err)
			continue
		}
		if out != (Outcome{}) {
			s.log.Infow("scheduled pass completed", "kind", j.kind(),
				"published", out.Published, "archived", out.Archived, "failed", out.Failed)
		}
		total.add(out)
	}
	return total
}
