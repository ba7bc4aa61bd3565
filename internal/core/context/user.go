// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// Role names carried in tokens.
const (
	RoleEeva    = "Eeva"    // registry administrator
	RolePete    = "Pete"    // organization main user
	RoleShirley = "Shirley" // organization content editor
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    string
	Email     string
	Roles     []string
	OrgIDs    []string // Organization unific roots the user works for
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetUserName returns the name written to Created/Modified columns.
// Requests without a user are attributed to the system.
func GetUserName(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		if u.Email != "" {
			return u.Email
		}
		return u.UserID
	}
	return "system"
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}
