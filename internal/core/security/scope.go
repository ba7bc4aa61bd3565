// Package security provides authorization for registry content.
package security

import (
	"context"
	"slices"

	appctx "ptv/internal/core/context"
)

// AccessScope defines which organizations' content the current request may modify.
type AccessScope struct {
	// UserID is the authenticated user
	UserID string

	// IsAdmin bypasses organization checks
	IsAdmin bool

	// AllowedOrgIDs are organization unific roots the user works for.
	// Empty = no write access (unless IsAdmin)
	AllowedOrgIDs []string
}

// NewAccessScope builds the scope from the authenticated user in ctx.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}
	return &AccessScope{
		UserID:        user.UserID,
		IsAdmin:       user.IsAdmin,
		AllowedOrgIDs: slices.Clone(user.OrgIDs),
	}
}

// CanAccessOrg checks if user works directly for the organization.
func (s *AccessScope) CanAccessOrg(orgID string) bool {
	if s.IsAdmin {
		return true
	}
	return slices.Contains(s.AllowedOrgIDs, orgID)
}

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context, deriving it from the user when absent.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
