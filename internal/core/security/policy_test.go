package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/core/id"
)

// fakeTree maps a child organization to its parent.
type fakeTree map[id.ID]id.ID

func (t fakeTree) IsDescendant(ancestorID, orgID id.ID) bool {
	for cur, ok := orgID, true; ok; cur, ok = t[cur] {
		if cur == ancestorID {
			return true
		}
	}
	return false
}

func TestOrganizationPolicy_CanModify(t *testing.T) {
	parent, child, other := id.New(), id.New(), id.New()
	policy := NewOrganizationPolicy(fakeTree{child: parent})
	entityID := id.New()

	tests := []struct {
		name    string
		scope   *AccessScope
		owner   *id.ID
		allowed bool
	}{
		{"admin without owner", &AccessScope{IsAdmin: true}, nil, true},
		{"user without owner", &AccessScope{AllowedOrgIDs: []string{parent.String()}}, nil, false},
		{"own organization", &AccessScope{AllowedOrgIDs: []string{child.String()}}, &child, true},
		{"parent edits sub-organization", &AccessScope{AllowedOrgIDs: []string{parent.String()}}, &child, true},
		{"sub-organization edits parent", &AccessScope{AllowedOrgIDs: []string{child.String()}}, &parent, false},
		{"unrelated organization", &AccessScope{AllowedOrgIDs: []string{other.String()}}, &child, false},
		{"no organizations", &AccessScope{}, &child, false},
		{"malformed organization id", &AccessScope{AllowedOrgIDs: []string{"nope"}}, &child, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithScope(context.Background(), tt.scope)
			err := policy.CanModify(ctx, "publish", entityID, tt.owner)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsOperationForbidden(err))
		})
	}
}

func TestGetScope_DerivesFromUser(t *testing.T) {
	orgID := id.New().String()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "pete@example.fi",
		OrgIDs: []string{orgID},
	})

	scope := GetScope(ctx)
	assert.Equal(t, "pete@example.fi", scope.UserID)
	assert.False(t, scope.IsAdmin)
	assert.True(t, scope.CanAccessOrg(orgID))

	assert.Empty(t, GetScope(context.Background()).AllowedOrgIDs)
}
