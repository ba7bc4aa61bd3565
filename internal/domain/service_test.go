package domain

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/core/security"
	"ptv/internal/core/tx"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/types"
	"ptv/internal/domain/validation"
	"ptv/internal/domain/versioning"
)

type testEntity struct {
	entity.VersionedAggregate
	OrganizationID *id.ID `json:"organizationId"`
}

func (t *testEntity) Validate(context.Context) error {
	if len(t.Names) == 0 {
		return apperror.NewValidation("name is required")
	}
	return nil
}

func (t *testEntity) OwnerOrganization() *id.ID { return t.OrganizationID }

func (t *testEntity) RuleAttributes() map[string]any { return nil }

var (
	testTypes  = types.NewSnapshot(types.SeedRows())
	langFI     = types.SeedID(types.KindLanguage, "fi")
	langSV     = types.SeedID(types.KindLanguage, "sv")
	nameType   = types.SeedID(types.KindNameType, types.NameTypeName)
	descType   = types.SeedID(types.KindDescriptionType, types.DescriptionTypeDescription)
	testCloner = cloning.Kind(cloning.DefaultAggregateCloner(),
		func(e *testEntity) *entity.VersionedAggregate { return &e.VersionedAggregate },
		func(dst, src *testEntity) {
			*dst = *src
			if src.OrganizationID != nil {
				dst.OrganizationID = id.Ptr(*src.OrganizationID)
			}
		})
)

type memRepo struct {
	rows map[id.ID]*testEntity
}

func newMemRepo() *memRepo { return &memRepo{rows: map[id.ID]*testEntity{}} }

func (r *memRepo) status(e *testEntity) string {
	code, _ := testTypes.Code(types.KindPublishingStatus, e.PublishingStatusID)
	return code
}

func (r *memRepo) Create(_ context.Context, e *testEntity) error {
	if _, ok := r.rows[e.ID]; ok {
		return apperror.NewConflict("exists")
	}
	r.rows[e.ID] = testCloner.Clone(e)
	return nil
}

func (r *memRepo) Update(_ context.Context, e *testEntity) error {
	stored, ok := r.rows[e.ID]
	if !ok {
		return apperror.NewNotFound("test", e.ID)
	}
	if stored.RowVersion != e.RowVersion {
		return apperror.NewConcurrentModification("test", e.ID)
	}
	e.RowVersion++
	r.rows[e.ID] = testCloner.Clone(e)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, entityID id.ID) (*testEntity, error) {
	if e, ok := r.rows[entityID]; ok {
		return testCloner.Clone(e), nil
	}
	return nil, apperror.NewNotFound("test", entityID)
}

func (r *memRepo) versions(rootID id.ID) []*testEntity {
	var out []*testEntity
	for _, e := range r.rows {
		if e.UnificRootID == rootID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].VersionInfo, out[j].VersionInfo
		if a.VersionMajor != b.VersionMajor {
			return a.VersionMajor < b.VersionMajor
		}
		return a.VersionMinor < b.VersionMinor
	})
	return out
}

func (r *memRepo) GetLatest(_ context.Context, rootID id.ID) (*testEntity, error) {
	v := r.versions(rootID)
	if len(v) == 0 {
		return nil, apperror.NewNotFound("test", rootID)
	}
	return testCloner.Clone(v[len(v)-1]), nil
}

func (r *memRepo) GetLastPublished(_ context.Context, rootID id.ID) (*testEntity, error) {
	for _, e := range r.versions(rootID) {
		if r.status(e) == types.StatusPublished {
			return testCloner.Clone(e), nil
		}
	}
	return nil, apperror.NewNotFound("test", rootID)
}

func (r *memRepo) ListVersions(_ context.Context, rootID id.ID) ([]*testEntity, error) {
	return testCloner.CloneCollection(r.versions(rootID)), nil
}

func (r *memRepo) List(context.Context, ListFilter) (ListResult[*testEntity], error) {
	var items []*testEntity
	for _, e := range r.rows {
		items = append(items, testCloner.Clone(e))
	}
	return ListResult[*testEntity]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) ListScheduled(_ context.Context, now time.Time) ([]*testEntity, error) {
	var out []*testEntity
	for _, e := range r.rows {
		switch r.status(e) {
		case types.StatusDeleted, types.StatusOldPublished:
			continue
		}
		for _, la := range e.LanguageAvailabilities {
			if la.IsExpired(now) || (la.IsDue(now) && r.status(e) != types.StatusPublished) {
				out = append(out, testCloner.Clone(e))
				break
			}
		}
	}
	return out, nil
}

type memHistory struct {
	entries []HistoryEntry
}

func (h *memHistory) Record(_ context.Context, e HistoryEntry) error {
	h.entries = append(h.entries, e)
	return nil
}

func (h *memHistory) List(_ context.Context, entityType string, rootID id.ID) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for _, e := range h.entries {
		if e.EntityType == entityType && e.RootID == rootID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fixture struct {
	svc     *VersionedService[*testEntity]
	repo    *memRepo
	history *memHistory
	org     id.ID
	ctx     context.Context
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules, err := validation.NewEngine(map[string][]validation.Rule{
		"test": {
			{Name: "name_required", Expr: `name != ""`, Message: "name is required"},
			{Name: "description_required", Expr: `description != ""`, Message: "description is required"},
		},
	})
	require.NoError(t, err)

	f := &fixture{
		repo:    newMemRepo(),
		history: &memHistory{},
		org:     id.New(),
		clock:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewVersionedService(VersionedServiceConfig[*testEntity]{
		Repo:       f.repo,
		TxManager:  tx.Direct{},
		Types:      testTypes,
		Versioning: versioning.NewManager(testTypes).WithClock(func() time.Time { return f.clock }),
		Rules:      rules,
		Policy:     security.NewOrganizationPolicy(nil),
		History:    f.history,
		Clone:      testCloner.Clone,
		EntityName: "test",
		RuleKind:   "test",
	})
	f.ctx = appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "eeva", OrgIDs: []string{f.org.String()}})
	return f
}

func (f *fixture) newEntity(withDescription bool) *testEntity {
	e := &testEntity{OrganizationID: id.Ptr(f.org)}
	e.SetName(langFI, nameType, "Kirjasto")
	e.SetName(langSV, nameType, "Bibliotek")
	if withDescription {
		e.SetDescription(langFI, descType, entity.NewRichText("Lainaa kirjoja"))
		e.SetDescription(langSV, descType, entity.NewRichText("Låna böcker"))
	}
	return e
}

func (f *fixture) statusOf(t *testing.T, versionID id.ID) string {
	t.Helper()
	e, ok := f.repo.rows[versionID]
	require.True(t, ok)
	return f.repo.status(e)
}

func status(code string) id.ID { return types.SeedID(types.KindPublishingStatus, code) }

func TestVersionedService_Create(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)

	require.NoError(t, f.svc.Create(f.ctx, e))

	assert.False(t, id.IsNil(e.ID))
	assert.Equal(t, e.ID, e.UnificRootID)
	assert.Equal(t, "0.1", versioning.String(e.VersionInfo))
	assert.Equal(t, types.StatusDraft, f.statusOf(t, e.ID))
	require.Len(t, e.LanguageAvailabilities, 2)
	for _, la := range e.LanguageAvailabilities {
		assert.Equal(t, status(types.StatusDraft), la.StatusID)
		assert.Equal(t, e.ID, la.OwnerID)
	}
	for _, n := range e.Names {
		assert.Equal(t, e.ID, n.OwnerID)
	}
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, ActionCreate, f.history.entries[0].Action)
}

func TestVersionedService_Create_ForbiddenForOtherOrganization(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	e.OrganizationID = id.Ptr(id.New())

	err := f.svc.Create(f.ctx, e)

	assert.True(t, apperror.IsOperationForbidden(err))
	assert.Empty(t, f.repo.rows)
}

func TestVersionedService_SaveDraftInPlace(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))

	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.SetName(langFI, nameType, "Pääkirjasto")

	saved, err := f.svc.Save(f.ctx, edit)

	require.NoError(t, err)
	assert.Equal(t, e.ID, saved.ID)
	assert.Len(t, f.repo.rows, 1)
	assert.Equal(t, "Pääkirjasto", f.repo.rows[e.ID].Name(langFI, nameType))

	stale, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	stale.RowVersion--
	_, err = f.svc.Save(f.ctx, stale)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))
}

func TestVersionedService_PublishAndCopyOnWrite(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))

	published, err := f.svc.Publish(f.ctx, e.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "1.0", versioning.String(published.VersionInfo))
	assert.Equal(t, types.StatusPublished, f.statusOf(t, e.ID))
	for _, la := range f.repo.rows[e.ID].LanguageAvailabilities {
		assert.Equal(t, status(types.StatusPublished), la.StatusID)
	}

	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.SetName(langFI, nameType, "Uusi nimi")
	modified, err := f.svc.Save(f.ctx, edit)
	require.NoError(t, err)

	assert.NotEqual(t, e.ID, modified.ID)
	assert.Equal(t, e.ID, modified.UnificRootID)
	assert.Equal(t, "1.1", versioning.String(modified.VersionInfo))
	require.NotNil(t, modified.PreviousVersionID)
	assert.Equal(t, e.ID, *modified.PreviousVersionID)
	assert.Equal(t, types.StatusModified, f.statusOf(t, modified.ID))
	assert.Equal(t, "Kirjasto", f.repo.rows[e.ID].Name(langFI, nameType), "published version untouched")
	assert.Equal(t, types.StatusPublished, f.statusOf(t, e.ID))
	for _, la := range f.repo.rows[modified.ID].LanguageAvailabilities {
		assert.Equal(t, modified.ID, la.OwnerID)
		assert.Equal(t, status(types.StatusModified), la.StatusID)
	}

	again, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.svc.Save(f.ctx, again)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict), "second working copy is rejected")

	republished, err := f.svc.Publish(f.ctx, modified.ID, []id.ID{langFI})
	require.NoError(t, err)
	assert.Equal(t, "2.0", versioning.String(republished.VersionInfo))
	assert.Equal(t, types.StatusOldPublished, f.statusOf(t, e.ID))
	assert.Equal(t, types.StatusPublished, f.statusOf(t, modified.ID))
	assert.Equal(t, status(types.StatusPublished), f.repo.rows[modified.ID].Availability(langFI).StatusID)
	assert.Equal(t, status(types.StatusModified), f.repo.rows[modified.ID].Availability(langSV).StatusID)
}

func TestVersionedService_FailedPublishIsStamped(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(false)
	require.NoError(t, f.svc.Create(f.ctx, e))

	_, err := f.svc.Publish(f.ctx, e.ID, []id.ID{langSV})

	require.Error(t, err)
	assert.True(t, IsPublishValidation(err))
	stored := f.repo.rows[e.ID]
	assert.Equal(t, types.StatusDraft, f.repo.status(stored))
	require.NotNil(t, stored.Availability(langSV).LastFailedPublishAt)
	assert.Equal(t, f.clock, *stored.Availability(langSV).LastFailedPublishAt)
	assert.Nil(t, stored.Availability(langFI).LastFailedPublishAt)

	fixed, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	fixed.SetDescription(langSV, descType, entity.NewRichText("Låna böcker"))
	_, err = f.svc.Save(f.ctx, fixed)
	require.NoError(t, err)

	_, err = f.svc.Publish(f.ctx, e.ID, []id.ID{langSV})
	require.NoError(t, err)
	assert.Nil(t, f.repo.rows[e.ID].Availability(langSV).LastFailedPublishAt)
}

func TestVersionedService_PublishUnknownLanguage(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))

	_, err := f.svc.Publish(f.ctx, e.ID, []id.ID{types.SeedID(types.KindLanguage, "en")})

	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestVersionedService_ArchiveAndRestore(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))
	_, err := f.svc.Publish(f.ctx, e.ID, nil)
	require.NoError(t, err)

	archived, err := f.svc.Archive(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDeleted, f.statusOf(t, archived.ID))
	for _, la := range f.repo.rows[e.ID].LanguageAvailabilities {
		assert.Equal(t, status(types.StatusDeleted), la.StatusID)
	}

	restored, err := f.svc.Restore(f.ctx, e.ID)
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, restored.ID)
	assert.Equal(t, types.StatusModified, f.statusOf(t, restored.ID))
	assert.Equal(t, "1.1", versioning.String(restored.VersionInfo))
	assert.Equal(t, types.StatusDeleted, f.statusOf(t, e.ID))

	_, err = f.svc.Restore(f.ctx, restored.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestVersionedService_Withdraw(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))

	_, err := f.svc.Withdraw(f.ctx, e.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))

	_, err = f.svc.Publish(f.ctx, e.ID, nil)
	require.NoError(t, err)
	withdrawn, err := f.svc.Withdraw(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, withdrawn.ID)
	assert.Equal(t, types.StatusModified, f.statusOf(t, e.ID))

	history, err := f.svc.History(f.ctx, e.UnificRootID)
	require.NoError(t, err)
	var actions []string
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{ActionCreate, ActionPublish, ActionWithdraw}, actions)
}

func TestVersionedService_AdminBypassesOrganization(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	e.OrganizationID = nil
	admin := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "root", IsAdmin: true})

	require.NoError(t, f.svc.Create(admin, e))

	_, err := f.svc.Publish(f.ctx, e.ID, nil)
	assert.True(t, apperror.IsOperationForbidden(err))
}

func (f *fixture) schedule(t *testing.T, versionID, lang id.ID, from, to *time.Time) *testEntity {
	t.Helper()
	edit, err := f.svc.GetByID(f.ctx, versionID)
	require.NoError(t, err)
	edit.LanguageAvailabilities = []*entity.LanguageAvailability{{LanguageID: lang, ValidFrom: from, ValidTo: to}}
	saved, err := f.svc.Save(f.ctx, edit)
	require.NoError(t, err)
	return saved
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestVersionedService_SaveKeepsSchedule(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))
	from := f.clock.Add(24 * time.Hour)

	f.schedule(t, e.ID, langFI, &from, nil)

	stored := f.repo.rows[e.ID].Availability(langFI)
	require.NotNil(t, stored.ValidFrom)
	assert.Equal(t, from, *stored.ValidFrom)
	assert.Equal(t, status(types.StatusDraft), stored.StatusID)
	assert.Nil(t, f.repo.rows[e.ID].Availability(langSV).ValidFrom)

	// saving without a schedule keeps the stored one
	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.LanguageAvailabilities = nil
	_, err = f.svc.Save(f.ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, from, *f.repo.rows[e.ID].Availability(langFI).ValidFrom)
}

func TestVersionedService_ScheduleValidation(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))

	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.LanguageAvailabilities = []*entity.LanguageAvailability{{
		LanguageID: langFI,
		ValidFrom:  ptrTime(f.clock.Add(time.Hour)),
		ValidTo:    ptrTime(f.clock),
	}}
	_, err = f.svc.Save(f.ctx, edit)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	edit, err = f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.LanguageAvailabilities = []*entity.LanguageAvailability{{
		LanguageID: types.SeedID(types.KindLanguage, "en"),
		ValidFrom:  ptrTime(f.clock.Add(time.Hour)),
	}}
	_, err = f.svc.Save(f.ctx, edit)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "language without a name cannot be scheduled")
}

func TestVersionedService_CreateWithSchedule(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	from := f.clock.Add(time.Hour)
	e.LanguageAvailabilities = []*entity.LanguageAvailability{{LanguageID: langSV, ValidFrom: &from}}

	require.NoError(t, f.svc.Create(f.ctx, e))

	stored := f.repo.rows[e.ID]
	require.Len(t, stored.LanguageAvailabilities, 2)
	assert.Equal(t, from, *stored.Availability(langSV).ValidFrom)
	assert.Equal(t, e.ID, stored.Availability(langSV).OwnerID)
	assert.Nil(t, stored.Availability(langFI).ValidFrom)
}

func TestVersionedService_SaveRejectsForeignOwner(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))
	foreign := id.New()

	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.OrganizationID = id.Ptr(foreign)
	_, err = f.svc.Save(f.ctx, edit)

	assert.True(t, apperror.IsOperationForbidden(err))
	assert.Equal(t, f.org, *f.repo.rows[e.ID].OrganizationID)

	// an organization the caller also belongs to is accepted
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "eeva",
		OrgIDs: []string{f.org.String(), foreign.String()},
	})
	edit, err = f.svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	edit.OrganizationID = id.Ptr(foreign)
	_, err = f.svc.Save(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, foreign, *f.repo.rows[e.ID].OrganizationID)
}

// runScheduled does what the worker does in one pass.
func (f *fixture) runScheduled(t *testing.T) (published, archived int) {
	t.Helper()
	due, err := f.svc.ListScheduled(f.ctx)
	require.NoError(t, err)
	for _, e := range due {
		var langs []id.ID
		expired := false
		for _, la := range e.LanguageAvailabilities {
			expired = expired || la.IsExpired(f.clock)
			if la.IsDue(f.clock) {
				langs = append(langs, la.LanguageID)
			}
		}
		if expired {
			_, err := f.svc.Archive(f.ctx, e.ID)
			require.NoError(t, err)
			archived++
			continue
		}
		_, err := f.svc.Publish(f.ctx, e.ID, langs)
		require.NoError(t, err)
		published++
	}
	return published, archived
}

func TestVersionedService_ScheduledLifecycle(t *testing.T) {
	f := newFixture(t)
	e := f.newEntity(true)
	require.NoError(t, f.svc.Create(f.ctx, e))
	start := f.clock

	f.schedule(t, e.ID, langFI, ptrTime(start.Add(time.Hour)), ptrTime(start.Add(48*time.Hour)))

	published, archived := f.runScheduled(t)
	assert.Zero(t, published+archived, "nothing is due yet")

	f.clock = start.Add(2 * time.Hour)
	published, _ = f.runScheduled(t)
	assert.Equal(t, 1, published)
	assert.Equal(t, types.StatusPublished, f.statusOf(t, e.ID))
	assert.Equal(t, status(types.StatusPublished), f.repo.rows[e.ID].Availability(langFI).StatusID)
	assert.Equal(t, status(types.StatusDraft), f.repo.rows[e.ID].Availability(langSV).StatusID)

	published, archived = f.runScheduled(t)
	assert.Zero(t, published+archived, "a published version is not published again")

	// a working copy starts without the schedule of the published version
	edit, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	edit.SetName(langFI, nameType, "Pääkirjasto")
	modified, err := f.svc.Save(f.ctx, edit)
	require.NoError(t, err)
	for _, la := range f.repo.rows[modified.ID].LanguageAvailabilities {
		assert.Nil(t, la.ValidFrom)
		assert.Nil(t, la.ValidTo)
	}

	f.clock = start.Add(49 * time.Hour)
	published, archived = f.runScheduled(t)
	assert.Zero(t, published)
	assert.Equal(t, 1, archived)
	assert.Equal(t, types.StatusDeleted, f.statusOf(t, e.ID))
}
