package entity

import (
	"time"

	"ptv/internal/core/id"
)

// LanguageAvailability is the publishing state of one language of one version.
// At most one row exists per (OwnerID, LanguageID).
type LanguageAvailability struct {
	OwnerID    id.ID `db:"owner_id" json:"-"`
	LanguageID id.ID `db:"language_id" json:"languageId"`
	StatusID   id.ID `db:"status_id" json:"statusId"`

	// LastFailedPublishAt is set when a publish attempt fails validation
	// and cleared by the next status change.
	LastFailedPublishAt *time.Time `db:"last_failed_publish_at" json:"lastFailedPublishAt,omitempty"`

	// ValidFrom schedules publishing, ValidTo schedules archiving.
	ValidFrom *time.Time `db:"valid_from" json:"validFrom,omitempty"`
	ValidTo   *time.Time `db:"valid_to" json:"validTo,omitempty"`

	Reviewed   *time.Time `db:"reviewed" json:"reviewed,omitempty"`
	ReviewedBy string     `db:"reviewed_by" json:"reviewedBy,omitempty"`

	Modified   time.Time `db:"modified" json:"modified"`
	ModifiedBy string    `db:"modified_by" json:"modifiedBy,omitempty"`
}

// IsDue reports whether the scheduled publish time has passed at now.
func (la *LanguageAvailability) IsDue(now time.Time) bool {
	return la.ValidFrom != nil && !la.ValidFrom.After(now)
}

// IsExpired reports whether the scheduled archive time has passed at now.
func (la *LanguageAvailability) IsExpired(now time.Time) bool {
	return la.ValidTo != nil && !la.ValidTo.After(now)
}
