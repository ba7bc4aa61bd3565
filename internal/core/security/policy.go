package security

import (
	"context"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

// OrganizationTree answers hierarchy questions about organization unific roots.
type OrganizationTree interface {
	// IsDescendant reports whether orgID equals ancestorID or lies below it.
	IsDescendant(ancestorID, orgID id.ID) bool
}

// OrganizationPolicy decides whether the caller may modify content owned by an organization.
// A user of a parent organization may modify content of its sub-organizations.
type OrganizationPolicy struct {
	tree OrganizationTree
}

// NewOrganizationPolicy creates a policy backed by the organization tree.
func NewOrganizationPolicy(tree OrganizationTree) *OrganizationPolicy {
	return &OrganizationPolicy{tree: tree}
}

// CanModify returns OperationForbidden unless the scope covers ownerOrgID.
// Content without an owner is editable by admins only.
func (p *OrganizationPolicy) CanModify(ctx context.Context, operation string, entityID id.ID, ownerOrgID *id.ID) error {
	scope := GetScope(ctx)
	if scope.IsAdmin {
		return nil
	}
	if ownerOrgID == nil {
		return apperror.NewOperationForbidden(operation, entityID)
	}
	if scope.CanAccessOrg(ownerOrgID.String()) {
		return nil
	}
	for _, raw := range scope.AllowedOrgIDs {
		allowed, err := id.Parse(raw)
		if err != nil {
			continue
		}
		if p.tree != nil && p.tree.IsDescendant(allowed, *ownerOrgID) {
			return nil
		}
	}
	return apperror.NewOperationForbidden(operation, entityID).
		WithDetail("organization", ownerOrgID.String())
}

// AllowAll lets every caller modify every entity. Used in tests.
type AllowAll struct{}

// CanModify implements the policy contract and never fails.
func (AllowAll) CanModify(context.Context, string, id.ID, *id.ID) error { return nil }
