// Package versioning implements the publishing lifecycle of language versions:
// allowed status transitions, per-language status changes and version numbering.
package versioning

import (
	"ptv/internal/domain/types"
)

var transitions = map[string][]string{
	types.StatusDraft:        {types.StatusModified, types.StatusPublished, types.StatusDeleted},
	types.StatusModified:     {types.StatusPublished, types.StatusDeleted},
	types.StatusPublished:    {types.StatusModified, types.StatusOldPublished, types.StatusDeleted},
	types.StatusDeleted:      {types.StatusModified},
	types.StatusOldPublished: {},
}

// CanTransition reports whether a version may move from one status code to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether a version in status can be changed in place.
// Published versions are edited through a new Modified copy.
func IsEditable(status string) bool {
	return status == types.StatusDraft || status == types.StatusModified
}

// statusRank orders language statuses for DeriveEntityStatus: the entity takes
// the most public status any of its languages has.
var statusRank = map[string]int{
	types.StatusPublished:    5,
	types.StatusModified:     4,
	types.StatusDraft:        3,
	types.StatusOldPublished: 2,
	types.StatusDeleted:      1,
}
