// Package organization provides the Organization kind. Organizations form a
// tree through ParentID; content of a sub-organization may be edited by users
// of its ancestors.
package organization

import (
	"context"
	"regexp"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
)

var businessCodePattern = regexp.MustCompile(`^\d{7}-\d$`)

// Organization is one version of an organization.
type Organization struct {
	entity.VersionedAggregate

	// ParentID is the unific root of the parent organization; nil for a main organization
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	// BusinessCode is the Finnish business id (Y-tunnus)
	BusinessCode string `db:"business_code" json:"businessCode,omitempty"`

	TypeID *id.ID `db:"type_id" json:"typeId,omitempty"`

	// Oid is the organization identifier of the national code service
	Oid string `db:"oid" json:"oid,omitempty"`

	MunicipalityCode string `db:"municipality_code" json:"municipalityCode,omitempty"`
}

// IsMain reports whether the organization has no parent.
func (o *Organization) IsMain() bool {
	return o.ParentID == nil
}

// Validate implements entity.Validatable interface.
func (o *Organization) Validate(ctx context.Context) error {
	if err := o.ValidateNames(); err != nil {
		return err
	}
	if o.BusinessCode != "" && !ValidBusinessCode(o.BusinessCode) {
		return apperror.NewValidation("invalid business code").WithDetail("businessCode", o.BusinessCode)
	}
	if o.ParentID != nil && !id.IsNil(o.UnificRootID) && *o.ParentID == o.UnificRootID {
		return apperror.NewValidation("organization cannot be its own parent")
	}
	return nil
}

// ValidBusinessCode checks the format and the check digit of a business id.
func ValidBusinessCode(code string) bool {
	code = strings.TrimSpace(code)
	if !businessCodePattern.MatchString(code) {
		return false
	}
	weights := [7]int{7, 9, 10, 5, 8, 4, 2}
	sum := 0
	for i, w := range weights {
		sum += int(code[i]-'0') * w
	}
	rem := sum % 11
	if rem == 1 {
		return false
	}
	check := 0
	if rem != 0 {
		check = 11 - rem
	}
	return int(code[8]-'0') == check
}

// OwnerOrganization implements domain.Versioned. A new organization is owned
// by its parent; a stored one owns itself.
func (o *Organization) OwnerOrganization() *id.ID {
	if id.IsNil(o.UnificRootID) {
		return o.ParentID
	}
	return id.Ptr(o.UnificRootID)
}

// RuleAttributes implements domain.Versioned.
func (o *Organization) RuleAttributes() map[string]any {
	return map[string]any{
		"businessCode": o.BusinessCode,
		"isMain":       o.IsMain(),
	}
}

// NewCloner returns the deep copy cloner of organizations.
func NewCloner(agg *cloning.AggregateCloner) cloning.Cloner[Organization] {
	return cloning.Kind(agg,
		func(o *Organization) *entity.VersionedAggregate { return &o.VersionedAggregate },
		func(dst, src *Organization) {
			if src.ParentID != nil {
				dst.ParentID = id.Ptr(*src.ParentID)
			}
			if src.TypeID != nil {
				dst.TypeID = id.Ptr(*src.TypeID)
			}
			dst.BusinessCode = src.BusinessCode
			dst.Oid = src.Oid
			dst.MunicipalityCode = src.MunicipalityCode
		})
}
