package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/core/tx"
	"ptv/internal/domain/types"
	"ptv/internal/domain/validation"
	"ptv/internal/domain/versioning"
	"ptv/pkg/logger"
)

// Versioned is implemented by every entity kind managed by VersionedService.
type Versioned interface {
	entity.LanguageVersioned
	entity.Validatable

	// OwnerOrganization returns the unific root of the owning organization.
	OwnerOrganization() *id.ID

	// RuleAttributes returns kind specific values for the publishing rules.
	RuleAttributes() map[string]any
}

// Authorizer decides whether the caller may modify content of an organization.
type Authorizer interface {
	CanModify(ctx context.Context, operation string, entityID id.ID, ownerOrgID *id.ID) error
}

// VersionedService provides the lifecycle of one versioned entity kind.
// Every operation runs in a single unit of work.
type VersionedService[T Versioned] struct {
	repo       VersionedRepository[T]
	txManager  tx.Manager
	types      types.Cache
	versioning *versioning.Manager
	rules      *validation.Engine
	policy     Authorizer
	history    HistoryRecorder
	clone      func(T) T
	hooks      *HookRegistry[T]

	// entityName for error messages and history
	entityName string
	// ruleKind selects the publishing rule set
	ruleKind string
}

// VersionedServiceConfig configures the versioned service.
type VersionedServiceConfig[T Versioned] struct {
	Repo       VersionedRepository[T]
	TxManager  tx.Manager
	Types      types.Cache
	Versioning *versioning.Manager
	Rules      *validation.Engine
	Policy     Authorizer
	History    HistoryRecorder // Optional
	Clone      func(T) T
	EntityName string
	RuleKind   string
}

// NewVersionedService creates a new versioned service.
func NewVersionedService[T Versioned](cfg VersionedServiceConfig[T]) *VersionedService[T] {
	return &VersionedService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		types:      cfg.Types,
		versioning: cfg.Versioning,
		rules:      cfg.Rules,
		policy:     cfg.Policy,
		history:    cfg.History,
		clone:      cfg.Clone,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
		ruleKind:   cfg.RuleKind,
	}
}

// Hooks returns the hook registry for external registration.
func (s *VersionedService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName returns the kind name used in errors.
func (s *VersionedService[T]) EntityName() string {
	return s.entityName
}

func (s *VersionedService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *VersionedService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

func (s *VersionedService[T]) statusID(code string) (id.ID, error) {
	return s.types.Get(types.KindPublishingStatus, code)
}

// Create stores e as the first Draft version of a new root. Every language with a
// name gets a Draft availability.
func (s *VersionedService[T]) Create(ctx context.Context, e T) error {
	// identity is assigned here, never taken from the caller
	e.Aggregate().VersionedEntity = entity.VersionedEntity{}
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.policy.CanModify(ctx, "create", id.Nil(), e.OwnerOrganization()); err != nil {
		return err
	}
	draftID, err := s.statusID(types.StatusDraft)
	if err != nil {
		return err
	}

	err = s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, e); err != nil {
			return err
		}

		agg := e.Aggregate()
		schedule := agg.LanguageAvailabilities
		agg.VersionedEntity = entity.NewVersionedEntity(draftID, appctx.GetUserName(ctx))
		agg.LanguageAvailabilities = nil
		agg.Reown()
		if err := s.ensureAvailabilities(ctx, e, types.StatusDraft); err != nil {
			return err
		}
		if err := s.applySchedule(ctx, e, schedule, nil); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.record(ctx, ActionCreate, e)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, e); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves a version by id.
func (s *VersionedService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	var out T
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.GetByID(ctx, entityID)
		return err
	})
	return out, s.normalizeGetErr(err, entityID)
}

// GetLatest retrieves the newest version of a root.
func (s *VersionedService[T]) GetLatest(ctx context.Context, rootID id.ID) (T, error) {
	var out T
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.GetLatest(ctx, rootID)
		return err
	})
	return out, s.normalizeGetErr(err, rootID)
}

// GetLastPublished retrieves the published version of a root.
func (s *VersionedService[T]) GetLastPublished(ctx context.Context, rootID id.ID) (T, error) {
	var out T
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.GetLastPublished(ctx, rootID)
		return err
	})
	return out, s.normalizeGetErr(err, rootID)
}

// List retrieves versions with filtering.
func (s *VersionedService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	var out ListResult[T]
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.List(ctx, filter)
		return err
	})
	return out, err
}

// Save stores an edited version. Draft and Modified versions are updated in
// place; a Published version is copied into a new Modified version with the next
// minor number, leaving the published one untouched. Returns the stored version.
//
// Availabilities on e carry only schedules: a language whose ValidFrom or
// ValidTo differs from the stored one is rescheduled. A new working copy does
// not inherit the schedule of the published version.
func (s *VersionedService[T]) Save(ctx context.Context, e T) (T, error) {
	var (
		zero  T
		saved T
	)
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		agg := e.Aggregate()
		current, err := s.repo.GetByID(ctx, agg.ID)
		if err != nil {
			return s.normalizeGetErr(err, agg.ID)
		}
		if err := s.policy.CanModify(ctx, "save", agg.ID, current.OwnerOrganization()); err != nil {
			return err
		}
		status, err := s.versioning.EntityStatus(current)
		if err != nil {
			return err
		}
		cur := current.Aggregate()
		agg.UnificRootID = cur.UnificRootID
		if err := e.Validate(ctx); err != nil {
			return s.normalizeValidationErr(err)
		}
		if owner := e.OwnerOrganization(); !id.Equal(owner, current.OwnerOrganization()) {
			if err := s.policy.CanModify(ctx, "save", agg.ID, owner); err != nil {
				return err
			}
		}
		if err := s.hooks.Run(ctx, BeforeSave, e); err != nil {
			return err
		}
		schedule := agg.LanguageAvailabilities

		user := appctx.GetUserName(ctx)
		switch {
		case versioning.IsEditable(status):
			if agg.RowVersion != cur.RowVersion {
				return apperror.NewConcurrentModification(s.entityName, agg.ID.String())
			}
			agg.PublishingStatusID = cur.PublishingStatusID
			agg.VersionInfo = cur.VersionInfo
			agg.Audit = cur.Audit
			agg.Touch(user)
			agg.LanguageAvailabilities = cur.LanguageAvailabilities
			agg.Reown()
			if err := s.ensureAvailabilities(ctx, e, status); err != nil {
				return err
			}
			if err := s.applySchedule(ctx, e, schedule, cur); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, e); err != nil {
				return fmt.Errorf("update %s: %w", s.entityName, err)
			}

		case status == types.StatusPublished:
			if err := s.ensureNoWorkingCopy(ctx, cur); err != nil {
				return err
			}
			copied := s.clone(current).Aggregate()
			if err := s.branch(agg, cur, user); err != nil {
				return err
			}
			agg.LanguageAvailabilities = copied.LanguageAvailabilities
			agg.ClearSchedule()
			agg.Reown()
			if err := s.versioning.SetAllLanguages(ctx, e, types.StatusModified); err != nil {
				return err
			}
			if err := s.ensureAvailabilities(ctx, e, types.StatusModified); err != nil {
				return err
			}
			if err := s.applySchedule(ctx, e, schedule, cur); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, e); err != nil {
				return fmt.Errorf("create %s version: %w", s.entityName, err)
			}

		default:
			return apperror.NewInvalidTransition(status, types.StatusModified)
		}

		saved = e
		return s.record(ctx, ActionSave, e)
	})
	if err != nil {
		return zero, err
	}

	if err := s.hooks.Run(ctx, AfterSave, saved); err != nil {
		logger.Warn(ctx, "after-save hook failed", "entity", s.entityName, "error", err)
	}
	return saved, nil
}

// Publish publishes the given languages of a Draft or Modified version; with no
// languages every language of the version is published. The previously published
// version of the root becomes OldPublished and the version gets the next major
// number. When the publishing rules fail, the failure time is stamped on the
// requested languages in its own committed unit of work.
func (s *VersionedService[T]) Publish(ctx context.Context, versionID id.ID, languages []id.ID) (T, error) {
	var (
		zero      T
		published T
		requested []id.ID
	)
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			return s.normalizeGetErr(err, versionID)
		}
		agg := current.Aggregate()
		if err := s.policy.CanModify(ctx, "publish", versionID, current.OwnerOrganization()); err != nil {
			return err
		}
		status, err := s.versioning.EntityStatus(current)
		if err != nil {
			return err
		}
		if !versioning.IsEditable(status) {
			return apperror.NewInvalidTransition(status, types.StatusPublished)
		}

		requested = languages
		if len(requested) == 0 {
			requested = agg.Languages()
		}
		if len(requested) == 0 {
			return apperror.NewValidation("version has no languages to publish").WithDetail("id", versionID.String())
		}
		for _, lang := range requested {
			if agg.Availability(lang) == nil {
				return apperror.NewValidation("language is not available in this version").
					WithDetail("id", versionID.String()).WithDetail("language", lang.String())
			}
		}

		if err := s.hooks.Run(ctx, BeforePublish, current); err != nil {
			return err
		}
		inputs, err := s.ruleInputs(current, requested)
		if err != nil {
			return err
		}
		if err := s.rules.Check(s.ruleKind, inputs); err != nil {
			return err
		}

		if prev, err := s.repo.GetLastPublished(ctx, agg.UnificRootID); err == nil {
			if prev.Aggregate().ID != agg.ID {
				if err := s.retire(ctx, prev); err != nil {
					return err
				}
			}
		} else if !apperror.IsNotFound(err) {
			return err
		}

		updates := make([]versioning.LanguageStatusUpdate, 0, len(requested))
		for _, lang := range requested {
			updates = append(updates, versioning.LanguageStatusUpdate{LanguageID: lang, StatusCode: types.StatusPublished})
		}
		if err := s.versioning.ChangeStatusOfLanguageVersion(ctx, current, updates); err != nil {
			return err
		}
		derived, err := s.versioning.DeriveEntityStatus(current)
		if err != nil {
			return err
		}
		if err := s.versioning.SetEntityStatus(current, derived); err != nil {
			return err
		}
		agg.VersionInfo = versioning.NextMajor(agg.VersionInfo)
		agg.Touch(appctx.GetUserName(ctx))

		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("publish %s: %w", s.entityName, err)
		}
		published = current
		return s.record(ctx, ActionPublish, current)
	})
	if err != nil {
		if IsPublishValidation(err) {
			s.markPublishFailed(ctx, versionID, requested)
		}
		return zero, err
	}

	if err := s.hooks.Run(ctx, AfterPublish, published); err != nil {
		logger.Warn(ctx, "after-publish hook failed", "entity", s.entityName, "error", err)
	}
	logger.Info(ctx, "version published", "entity", s.entityName, "id", versionID, "languages", len(requested))
	return published, nil
}

// markPublishFailed records the failure in a separate unit of work so that it
// survives the rollback of the publish attempt.
func (s *VersionedService[T]) markPublishFailed(ctx context.Context, versionID id.ID, languages []id.ID) {
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		s.versioning.MarkPublishFailed(current, languages, s.versioning.Now())
		return s.repo.Update(ctx, current)
	})
	if err != nil {
		logger.Error(ctx, "failed to record failed publish", "entity", s.entityName, "id", versionID, "error", err)
	}
}

// retire moves a published version and its published languages to OldPublished.
func (s *VersionedService[T]) retire(ctx context.Context, prev T) error {
	if err := s.versioning.SetEntityStatus(prev, types.StatusOldPublished); err != nil {
		return err
	}
	if err := s.versioning.SetAllLanguages(ctx, prev, types.StatusOldPublished); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, prev); err != nil {
		return fmt.Errorf("retire %s: %w", s.entityName, err)
	}
	return nil
}

// Archive logically deletes a version: the version and all its languages become
// Deleted. A published version of the same root is archived with it.
func (s *VersionedService[T]) Archive(ctx context.Context, versionID id.ID) (T, error) {
	var zero, archived T
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			return s.normalizeGetErr(err, versionID)
		}
		agg := current.Aggregate()
		if err := s.policy.CanModify(ctx, "archive", versionID, current.OwnerOrganization()); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeArchive, current); err != nil {
			return err
		}

		if err := s.deleteVersion(ctx, current); err != nil {
			return err
		}
		if prev, err := s.repo.GetLastPublished(ctx, agg.UnificRootID); err == nil {
			if prev.Aggregate().ID != agg.ID {
				if err := s.deleteVersion(ctx, prev); err != nil {
					return err
				}
			}
		} else if !apperror.IsNotFound(err) {
			return err
		}

		archived = current
		return s.record(ctx, ActionArchive, current)
	})
	if err != nil {
		return zero, err
	}
	if err := s.hooks.Run(ctx, AfterArchive, archived); err != nil {
		logger.Warn(ctx, "after-archive hook failed", "entity", s.entityName, "error", err)
	}
	return archived, nil
}

func (s *VersionedService[T]) deleteVersion(ctx context.Context, e T) error {
	if err := s.versioning.SetEntityStatus(e, types.StatusDeleted); err != nil {
		return err
	}
	if err := s.versioning.SetAllLanguages(ctx, e, types.StatusDeleted); err != nil {
		return err
	}
	e.Aggregate().Touch(appctx.GetUserName(ctx))
	if err := s.repo.Update(ctx, e); err != nil {
		return fmt.Errorf("archive %s: %w", s.entityName, err)
	}
	return nil
}

// Restore brings an archived version back as a new Modified version.
func (s *VersionedService[T]) Restore(ctx context.Context, versionID id.ID) (T, error) {
	var zero, restored T
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			return s.normalizeGetErr(err, versionID)
		}
		cur := current.Aggregate()
		if err := s.policy.CanModify(ctx, "restore", versionID, current.OwnerOrganization()); err != nil {
			return err
		}
		status, err := s.versioning.EntityStatus(current)
		if err != nil {
			return err
		}
		if status != types.StatusDeleted {
			return apperror.NewInvalidTransition(status, types.StatusModified)
		}
		if err := s.ensureNoWorkingCopy(ctx, cur); err != nil {
			return err
		}

		next := s.clone(current)
		agg := next.Aggregate()
		if err := s.branch(agg, cur, appctx.GetUserName(ctx)); err != nil {
			return err
		}
		agg.ClearSchedule()
		agg.Reown()
		if err := s.versioning.SetAllLanguages(ctx, next, types.StatusModified); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, next); err != nil {
			return fmt.Errorf("restore %s: %w", s.entityName, err)
		}
		restored = next
		return s.record(ctx, ActionRestore, next)
	})
	if err != nil {
		return zero, err
	}
	return restored, nil
}

// Withdraw takes a published version back to Modified in place.
func (s *VersionedService[T]) Withdraw(ctx context.Context, versionID id.ID) (T, error) {
	var zero, withdrawn T
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			return s.normalizeGetErr(err, versionID)
		}
		cur := current.Aggregate()
		if err := s.policy.CanModify(ctx, "withdraw", versionID, current.OwnerOrganization()); err != nil {
			return err
		}
		status, err := s.versioning.EntityStatus(current)
		if err != nil {
			return err
		}
		if status != types.StatusPublished {
			return apperror.NewInvalidTransition(status, types.StatusModified)
		}
		if err := s.ensureNoWorkingCopy(ctx, cur); err != nil {
			return err
		}

		if err := s.versioning.SetEntityStatus(current, types.StatusModified); err != nil {
			return err
		}
		if err := s.versioning.SetAllLanguages(ctx, current, types.StatusModified); err != nil {
			return err
		}
		cur.ClearSchedule()
		cur.Touch(appctx.GetUserName(ctx))
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("withdraw %s: %w", s.entityName, err)
		}
		withdrawn = current
		return s.record(ctx, ActionWithdraw, current)
	})
	if err != nil {
		return zero, err
	}
	return withdrawn, nil
}

// History returns the recorded lifecycle actions of a root, oldest first.
// Without a recorder it falls back to the stored versions.
func (s *VersionedService[T]) History(ctx context.Context, rootID id.ID) ([]HistoryEntry, error) {
	var out []HistoryEntry
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		if s.history != nil {
			var err error
			out, err = s.history.List(ctx, s.entityName, rootID)
			return err
		}
		versions, err := s.repo.ListVersions(ctx, rootID)
		if err != nil {
			return err
		}
		for _, v := range versions {
			agg := v.Aggregate()
			status, err := s.versioning.EntityStatus(v)
			if err != nil {
				return err
			}
			out = append(out, HistoryEntry{
				EntityType: s.entityName,
				RootID:     agg.UnificRootID,
				VersionID:  agg.ID,
				Version:    versioning.String(agg.VersionInfo),
				Status:     status,
				UserID:     agg.ModifiedBy,
				CreatedAt:  agg.Modified,
			})
		}
		return nil
	})
	return out, err
}

// ListScheduled returns versions with a due ValidFrom or ValidTo.
func (s *VersionedService[T]) ListScheduled(ctx context.Context) ([]T, error) {
	var out []T
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListScheduled(ctx, s.versioning.Now())
		return err
	})
	return out, err
}

// --- helpers ---

// branch gives agg a new identity as the next minor version after cur, in Modified status.
func (s *VersionedService[T]) branch(agg, cur *entity.VersionedAggregate, user string) error {
	modifiedID, err := s.statusID(types.StatusModified)
	if err != nil {
		return err
	}
	agg.ID = id.New()
	agg.UnificRootID = cur.UnificRootID
	agg.PublishingStatusID = modifiedID
	agg.VersionInfo = versioning.NextMinor(cur.VersionInfo)
	agg.PreviousVersionID = id.Ptr(cur.ID)
	agg.RowVersion = 1
	agg.Audit = entity.NewAudit(user)
	return nil
}

// ensureNoWorkingCopy rejects a new version while the root already has a newer editable one.
func (s *VersionedService[T]) ensureNoWorkingCopy(ctx context.Context, cur *entity.VersionedAggregate) error {
	latest, err := s.repo.GetLatest(ctx, cur.UnificRootID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if latest.Aggregate().ID == cur.ID {
		return nil
	}
	status, err := s.versioning.EntityStatus(latest)
	if err != nil {
		return err
	}
	if versioning.IsEditable(status) {
		return apperror.NewConflict("a newer working version already exists").
			WithDetail("id", latest.Aggregate().ID.String())
	}
	return nil
}

// applySchedule copies ValidFrom and ValidTo from incoming onto the availabilities
// of e. Values equal to those of stored are skipped, as are nil ones.
func (s *VersionedService[T]) applySchedule(ctx context.Context, e T, incoming []*entity.LanguageAvailability, stored *entity.VersionedAggregate) error {
	agg := e.Aggregate()
	var updates []versioning.LanguageStatusUpdate
	for _, in := range incoming {
		if in == nil || (in.ValidFrom == nil && in.ValidTo == nil) {
			continue
		}
		if stored != nil {
			if prev := stored.Availability(in.LanguageID); prev != nil &&
				sameTime(in.ValidFrom, prev.ValidFrom) && sameTime(in.ValidTo, prev.ValidTo) {
				continue
			}
		}
		if in.ValidFrom != nil && in.ValidTo != nil && !in.ValidTo.After(*in.ValidFrom) {
			return apperror.NewValidation("validTo must be after validFrom").
				WithDetail("language", in.LanguageID.String())
		}
		code, err := s.versioning.LanguageStatus(e, in.LanguageID)
		if err != nil {
			return err
		}
		if code == "" {
			return apperror.NewValidation("language is not available in this version").
				WithDetail("id", agg.ID.String()).WithDetail("language", in.LanguageID.String())
		}
		updates = append(updates, versioning.LanguageStatusUpdate{
			LanguageID: in.LanguageID,
			StatusCode: code,
			ValidFrom:  in.ValidFrom,
			ValidTo:    in.ValidTo,
		})
	}
	if len(updates) == 0 {
		return nil
	}
	return s.versioning.ChangeStatusOfLanguageVersion(ctx, e, updates)
}

// sameTime reports whether a nil want or an equal instant leaves have unchanged.
func sameTime(want, have *time.Time) bool {
	return want == nil || (have != nil && want.Equal(*have))
}

// ensureAvailabilities adds an availability in statusCode for every named language without one.
func (s *VersionedService[T]) ensureAvailabilities(ctx context.Context, e T, statusCode string) error {
	agg := e.Aggregate()
	var updates []versioning.LanguageStatusUpdate
	seen := make(map[id.ID]bool)
	for _, n := range agg.Names {
		if seen[n.LocalizationID] || agg.Availability(n.LocalizationID) != nil {
			continue
		}
		seen[n.LocalizationID] = true
		updates = append(updates, versioning.LanguageStatusUpdate{LanguageID: n.LocalizationID, StatusCode: statusCode})
	}
	if len(updates) == 0 {
		return nil
	}
	return s.versioning.ChangeStatusOfLanguageVersion(ctx, e, updates)
}

func (s *VersionedService[T]) ruleInputs(e T, languages []id.ID) ([]validation.Input, error) {
	agg := e.Aggregate()
	nameType, err := s.types.Get(types.KindNameType, types.NameTypeName)
	if err != nil {
		return nil, err
	}
	altNameType, err := s.types.Get(types.KindNameType, types.NameTypeAlternateName)
	if err != nil {
		return nil, err
	}
	descType, err := s.types.Get(types.KindDescriptionType, types.DescriptionTypeDescription)
	if err != nil {
		return nil, err
	}
	shortType, err := s.types.Get(types.KindDescriptionType, types.DescriptionTypeShortDescription)
	if err != nil {
		return nil, err
	}

	org := ""
	if owner := e.OwnerOrganization(); owner != nil {
		org = owner.String()
	}
	attrs := e.RuleAttributes()

	inputs := make([]validation.Input, 0, len(languages))
	for _, lang := range languages {
		code, err := s.types.Code(types.KindLanguage, lang)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, validation.Input{
			Language:         code,
			Name:             agg.Name(lang, nameType),
			AlternateName:    agg.Name(lang, altNameType),
			Description:      agg.Description(lang, descType).PlainText(),
			ShortDescription: agg.Description(lang, shortType).PlainText(),
			Organization:     org,
			Attributes:       attrs,
		})
	}
	return inputs, nil
}

func (s *VersionedService[T]) record(ctx context.Context, action string, e T) error {
	if s.history == nil {
		return nil
	}
	agg := e.Aggregate()
	status, err := s.versioning.EntityStatus(e)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", s.entityName, err)
	}
	entry := HistoryEntry{
		ID:         id.New(),
		EntityType: s.entityName,
		RootID:     agg.UnificRootID,
		VersionID:  agg.ID,
		Action:     action,
		Version:    versioning.String(agg.VersionInfo),
		Status:     status,
		UserID:     appctx.GetUserID(ctx),
		CreatedAt:  s.versioning.Now(),
		Snapshot:   snapshot,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		return fmt.Errorf("record %s history: %w", s.entityName, err)
	}
	return nil
}

// IsPublishValidation reports whether err is a failed publishing rule check.
func IsPublishValidation(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == apperror.CodePublishValidation
}
