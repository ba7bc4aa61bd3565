package entity

import (
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

// VersionInfo numbers a version within its unific root.
// Publishing bumps the major number, editing bumps the minor number.
type VersionInfo struct {
	VersionMajor      int    `db:"version_major" json:"versionMajor"`
	VersionMinor      int    `db:"version_minor" json:"versionMinor"`
	PreviousVersionID *id.ID `db:"previous_version_id" json:"previousVersionId,omitempty"`
}

// VersionedEntity is one physical row of a logical content item.
// ID identifies the version; UnificRootID is stable across versions.
type VersionedEntity struct {
	ID                 id.ID `db:"id" json:"id"`
	UnificRootID       id.ID `db:"unific_root_id" json:"unificRootId"`
	PublishingStatusID id.ID `db:"publishing_status_id" json:"publishingStatusId"`
	VersionInfo

	// RowVersion for optimistic locking (incremented on each update)
	RowVersion int `db:"row_version" json:"rowVersion"`

	Audit
}

// NewVersionedEntity creates the first version of a new root.
func NewVersionedEntity(statusID id.ID, user string) VersionedEntity {
	versionID := id.New()
	return VersionedEntity{
		ID:                 versionID,
		UnificRootID:       versionID,
		PublishingStatusID: statusID,
		VersionInfo:        VersionInfo{VersionMajor: 0, VersionMinor: 1},
		RowVersion:         1,
		Audit:              NewAudit(user),
	}
}

// LocalizedName is a name of a version in one language.
type LocalizedName struct {
	OwnerID        id.ID  `db:"owner_id" json:"-"`
	LocalizationID id.ID  `db:"localization_id" json:"localizationId"`
	TypeID         id.ID  `db:"type_id" json:"typeId"`
	Name           string `db:"name" json:"name"`
}

// LocalizedDescription is a description of a version in one language.
type LocalizedDescription struct {
	OwnerID        id.ID    `db:"owner_id" json:"-"`
	LocalizationID id.ID    `db:"localization_id" json:"localizationId"`
	TypeID         id.ID    `db:"type_id" json:"typeId"`
	Description    RichText `db:"description" json:"description"`
}

// VersionedAggregate is a version together with its owned per-language collections.
// Kind-specific entities embed it.
type VersionedAggregate struct {
	VersionedEntity

	Names                  []*LocalizedName        `db:"-" json:"names"`
	Descriptions           []*LocalizedDescription `db:"-" json:"descriptions"`
	LanguageAvailabilities []*LanguageAvailability `db:"-" json:"languageAvailabilities"`
}

// LanguageVersioned is implemented by every versioned kind through the embedded aggregate.
type LanguageVersioned interface {
	Aggregate() *VersionedAggregate
}

// Aggregate returns the embedded aggregate.
func (a *VersionedAggregate) Aggregate() *VersionedAggregate {
	return a
}

// Availability returns the availability row for languageID, or nil.
func (a *VersionedAggregate) Availability(languageID id.ID) *LanguageAvailability {
	for _, la := range a.LanguageAvailabilities {
		if la != nil && la.LanguageID == languageID {
			return la
		}
	}
	return nil
}

// Name returns the name in languageID of the given type.
func (a *VersionedAggregate) Name(languageID, typeID id.ID) string {
	for _, n := range a.Names {
		if n != nil && n.LocalizationID == languageID && n.TypeID == typeID {
			return n.Name
		}
	}
	return ""
}

// Description returns the description in languageID of the given type.
func (a *VersionedAggregate) Description(languageID, typeID id.ID) RichText {
	for _, d := range a.Descriptions {
		if d != nil && d.LocalizationID == languageID && d.TypeID == typeID {
			return d.Description
		}
	}
	return ""
}

// SetName replaces or appends a name.
func (a *VersionedAggregate) SetName(languageID, typeID id.ID, value string) {
	for _, n := range a.Names {
		if n != nil && n.LocalizationID == languageID && n.TypeID == typeID {
			n.Name = value
			return
		}
	}
	a.Names = append(a.Names, &LocalizedName{
		OwnerID:        a.ID,
		LocalizationID: languageID,
		TypeID:         typeID,
		Name:           value,
	})
}

// SetDescription replaces or appends a description.
func (a *VersionedAggregate) SetDescription(languageID, typeID id.ID, value RichText) {
	for _, d := range a.Descriptions {
		if d != nil && d.LocalizationID == languageID && d.TypeID == typeID {
			d.Description = value
			return
		}
	}
	a.Descriptions = append(a.Descriptions, &LocalizedDescription{
		OwnerID:        a.ID,
		LocalizationID: languageID,
		TypeID:         typeID,
		Description:    value,
	})
}

// Languages returns the language ids that have an availability row.
func (a *VersionedAggregate) Languages() []id.ID {
	out := make([]id.ID, 0, len(a.LanguageAvailabilities))
	for _, la := range a.LanguageAvailabilities {
		if la != nil {
			out = append(out, la.LanguageID)
		}
	}
	return out
}

// Reown stamps the version id onto every owned row. Called after a version gets a new ID.
func (a *VersionedAggregate) Reown() {
	for _, n := range a.Names {
		n.OwnerID = a.ID
	}
	for _, d := range a.Descriptions {
		d.OwnerID = a.ID
	}
	for _, la := range a.LanguageAvailabilities {
		la.OwnerID = a.ID
	}
}

// ClearSchedule drops ValidFrom and ValidTo of every language.
func (a *VersionedAggregate) ClearSchedule() {
	for _, la := range a.LanguageAvailabilities {
		la.ValidFrom = nil
		la.ValidTo = nil
	}
}

// ValidateNames checks that the version is named in at least one language.
func (a *VersionedAggregate) ValidateNames() error {
	for _, n := range a.Names {
		if n != nil && strings.TrimSpace(n.Name) != "" {
			return nil
		}
	}
	return apperror.NewValidation("name is required in at least one language")
}
