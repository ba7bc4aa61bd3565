package versioning

import (
	"context"
	"fmt"
	"time"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/types"
)

// LanguageStatusUpdate requests a status change of one language.
// ValidFrom and ValidTo are applied only when set.
type LanguageStatusUpdate struct {
	LanguageID id.ID
	StatusCode string
	ValidFrom  *time.Time
	ValidTo    *time.Time
}

// Manager changes publishing statuses of language versions.
type Manager struct {
	types types.Cache
	now   func() time.Time
}

// NewManager creates a new versioning manager.
func NewManager(cache types.Cache) *Manager {
	return &Manager{types: cache, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// ChangeStatusOfLanguageVersion applies updates to the language availabilities of
// e in place. A missing availability is appended. Every touched availability gets
// its failed-publish stamp cleared, whatever the target status. Nothing is saved.
// An unknown status code fails before anything is changed.
func (m *Manager) ChangeStatusOfLanguageVersion(ctx context.Context, e entity.LanguageVersioned, updates []LanguageStatusUpdate) error {
	agg := e.Aggregate()

	resolved := make([]id.ID, len(updates))
	for i, u := range updates {
		statusID, err := m.types.Get(types.KindPublishingStatus, u.StatusCode)
		if err != nil {
			return fmt.Errorf("change status of language version: %w", err)
		}
		resolved[i] = statusID
	}

	now := m.now()
	user := appctx.GetUserName(ctx)
	for i, u := range updates {
		la := agg.Availability(u.LanguageID)
		if la == nil {
			la = &entity.LanguageAvailability{OwnerID: agg.ID, LanguageID: u.LanguageID}
			agg.LanguageAvailabilities = append(agg.LanguageAvailabilities, la)
		}
		la.StatusID = resolved[i]
		la.LastFailedPublishAt = nil
		if u.ValidFrom != nil {
			la.ValidFrom = u.ValidFrom
		}
		if u.ValidTo != nil {
			la.ValidTo = u.ValidTo
		}
		la.Modified = now
		la.ModifiedBy = user
	}
	return nil
}

// SetAllLanguages moves every language of e to statusCode.
func (m *Manager) SetAllLanguages(ctx context.Context, e entity.LanguageVersioned, statusCode string) error {
	langs := e.Aggregate().Languages()
	updates := make([]LanguageStatusUpdate, 0, len(langs))
	for _, lang := range langs {
		updates = append(updates, LanguageStatusUpdate{LanguageID: lang, StatusCode: statusCode})
	}
	return m.ChangeStatusOfLanguageVersion(ctx, e, updates)
}

// MarkPublishFailed stamps the failed publish time on the given languages.
// Languages without an availability row are ignored.
func (m *Manager) MarkPublishFailed(e entity.LanguageVersioned, languages []id.ID, at time.Time) {
	agg := e.Aggregate()
	for _, lang := range languages {
		if la := agg.Availability(lang); la != nil {
			stamp := at
			la.LastFailedPublishAt = &stamp
		}
	}
}

// LanguageStatus returns the status code of one language, or "" without a row.
func (m *Manager) LanguageStatus(e entity.LanguageVersioned, languageID id.ID) (string, error) {
	la := e.Aggregate().Availability(languageID)
	if la == nil {
		return "", nil
	}
	return m.types.Code(types.KindPublishingStatus, la.StatusID)
}

// EntityStatus returns the status code of the version itself.
func (m *Manager) EntityStatus(e entity.LanguageVersioned) (string, error) {
	return m.types.Code(types.KindPublishingStatus, e.Aggregate().PublishingStatusID)
}

// DeriveEntityStatus computes the version status from its languages: the most
// public language status wins. A version without languages keeps its status.
func (m *Manager) DeriveEntityStatus(e entity.LanguageVersioned) (string, error) {
	agg := e.Aggregate()
	best, bestRank := "", 0
	for _, la := range agg.LanguageAvailabilities {
		code, err := m.types.Code(types.KindPublishingStatus, la.StatusID)
		if err != nil {
			return "", err
		}
		if r := statusRank[code]; r > bestRank {
			best, bestRank = code, r
		}
	}
	if best == "" {
		return m.EntityStatus(e)
	}
	return best, nil
}

// SetEntityStatus moves the version to statusCode if the lifecycle allows it.
func (m *Manager) SetEntityStatus(e entity.LanguageVersioned, statusCode string) error {
	current, err := m.EntityStatus(e)
	if err != nil {
		return err
	}
	if !CanTransition(current, statusCode) {
		return apperror.NewInvalidTransition(current, statusCode)
	}
	statusID, err := m.types.Get(types.KindPublishingStatus, statusCode)
	if err != nil {
		return err
	}
	e.Aggregate().PublishingStatusID = statusID
	return nil
}

// NextMinor numbers a new working copy of v.
func NextMinor(v entity.VersionInfo) entity.VersionInfo {
	return entity.VersionInfo{VersionMajor: v.VersionMajor, VersionMinor: v.VersionMinor + 1}
}

// NextMajor numbers a newly published version.
func NextMajor(v entity.VersionInfo) entity.VersionInfo {
	return entity.VersionInfo{VersionMajor: v.VersionMajor + 1, VersionMinor: 0, PreviousVersionID: v.PreviousVersionID}
}

// String renders a version number as major.minor.
func String(v entity.VersionInfo) string {
	return fmt.Sprintf("%d.%d", v.VersionMajor, v.VersionMinor)
}
