// Package entity provides the building blocks shared by all registry rows.
package entity

import (
	"context"
	"time"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Audit holds the creation and modification stamps written on every row.
type Audit struct {
	Created    time.Time `db:"created" json:"created"`
	CreatedBy  string    `db:"created_by" json:"createdBy,omitempty"`
	Modified   time.Time `db:"modified" json:"modified"`
	ModifiedBy string    `db:"modified_by" json:"modifiedBy,omitempty"`
}

// NewAudit stamps both creation and modification with now.
func NewAudit(user string) Audit {
	now := time.Now().UTC()
	return Audit{
		Created:    now,
		CreatedBy:  user,
		Modified:   now,
		ModifiedBy: user,
	}
}

// Touch records a modification by user.
func (a *Audit) Touch(user string) {
	a.Modified = time.Now().UTC()
	a.ModifiedBy = user
}
