package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/core/security"
	"ptv/internal/core/tx"
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/types"
	"ptv/internal/domain/validation"
	"ptv/internal/domain/versioning"
)

// mockRepo stubs the calls made by Create and the checks of Save; other methods panic through the nil interface.
type mockRepo struct {
	Repository
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, o *Organization) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, versionID id.ID) (*Organization, error) {
	args := m.Called(ctx, versionID)
	o, _ := args.Get(0).(*Organization)
	return o, args.Error(1)
}

func (m *mockRepo) BusinessCodeTaken(ctx context.Context, code string, exceptRootID id.ID) (bool, error) {
	args := m.Called(ctx, code, exceptRootID)
	return args.Bool(0), args.Error(1)
}

func newTestService(t *testing.T, repo *mockRepo) *Service {
	t.Helper()
	return newTestServiceWithTree(t, repo, nil)
}

func newTestServiceWithTree(t *testing.T, repo *mockRepo, tree Hierarchy) *Service {
	t.Helper()
	snapshot := types.NewSnapshot(types.SeedRows())
	rules, err := validation.NewEngine(validation.DefaultRules())
	require.NoError(t, err)
	return NewService(domain.VersionedServiceConfig[*Organization]{
		TxManager:  tx.Direct{},
		Types:      snapshot,
		Versioning: versioning.NewManager(snapshot),
		Rules:      rules,
		Policy:     security.AllowAll{},
	}, repo, tree, nil)
}

func adminCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "admin", IsAdmin: true})
}

func TestService_Create_DuplicateBusinessCode(t *testing.T) {
	repo := &mockRepo{}
	repo.On("BusinessCodeTaken", mock.Anything, "0245437-2", id.Nil()).Return(true, nil)
	svc := newTestService(t, repo)

	o := &Organization{BusinessCode: "0245437-2"}
	o.SetName(langFI, nameType, "Espoo")

	err := svc.Create(adminCtx(), o)

	require.Error(t, err)
	assert.True(t, apperror.IsDuplicity(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_UniqueBusinessCode(t *testing.T) {
	repo := &mockRepo{}
	repo.On("BusinessCodeTaken", mock.Anything, "0245437-2", id.Nil()).Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*organization.Organization")).Return(nil)
	svc := newTestService(t, repo)

	o := &Organization{BusinessCode: "0245437-2"}
	o.SetName(langFI, nameType, "Espoo")

	require.NoError(t, svc.Create(adminCtx(), o))
	assert.False(t, id.IsNil(o.UnificRootID))
	repo.AssertExpectations(t)
}

func TestService_Create_WithoutBusinessCodeSkipsCheck(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(t, repo)

	o := &Organization{}
	o.SetName(langFI, nameType, "Kunnan tekninen toimi")

	require.NoError(t, svc.Create(adminCtx(), o))
	repo.AssertNotCalled(t, "BusinessCodeTaken", mock.Anything, mock.Anything, mock.Anything)
}

// parents maps an organization root to its parent root.
type parents map[id.ID]id.ID

func (p parents) IsDescendant(ancestorID, orgID id.ID) bool {
	for cur, ok := orgID, true; ok; cur, ok = p[cur] {
		if cur == ancestorID {
			return true
		}
	}
	return false
}

func TestService_Save_RejectsCyclicParent(t *testing.T) {
	draft := types.SeedID(types.KindPublishingStatus, types.StatusDraft)
	stored := &Organization{}
	stored.VersionedEntity = entity.NewVersionedEntity(draft, "eeva")
	stored.SetName(langFI, nameType, "Espoo")

	child, grandchild := id.New(), id.New()
	tree := parents{child: stored.UnificRootID, grandchild: child}

	tests := []struct {
		name   string
		parent id.ID
	}{
		{"itself", stored.UnificRootID},
		{"sub-organization", child},
		{"deeper sub-organization", grandchild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			repo.On("GetByID", mock.Anything, stored.ID).Return(NewCloner(cloning.DefaultAggregateCloner()).Clone(stored), nil)
			svc := newTestServiceWithTree(t, repo, tree)

			// the handler sends only the version id
			edit := &Organization{ParentID: id.Ptr(tt.parent)}
			edit.ID = stored.ID
			edit.RowVersion = stored.RowVersion
			edit.SetName(langFI, nameType, "Espoo")

			_, err := svc.Save(adminCtx(), edit)

			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}
