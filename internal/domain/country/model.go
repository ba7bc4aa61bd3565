// Package country provides the country catalog with dial codes and localized names.
// Countries are imported from a JSON list and matched by their ISO code.
package country

import (
	"context"
	"regexp"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
)

var codePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Country is a row of the country catalog.
type Country struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`

	DialCodes []*DialCode    `db:"-" json:"dialCodes"`
	Names     []*CountryName `db:"-" json:"names"`

	entity.Audit
}

// DialCode is an international calling prefix of a country.
type DialCode struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`

	// CountryID is nil until the owning country has been stored.
	CountryID *id.ID `db:"country_id" json:"countryId,omitempty"`
}

// CountryName is the name of a country in one language.
type CountryName struct {
	CountryID      *id.ID `db:"country_id" json:"-"`
	LocalizationID id.ID  `db:"localization_id" json:"localizationId"`
	Name           string `db:"name" json:"name"`
}

// Validate implements entity.Validatable.
func (c *Country) Validate(ctx context.Context) error {
	if !codePattern.MatchString(c.Code) {
		return apperror.NewValidation("country code must be 2 uppercase letters").
			WithDetail("field", "code").
			WithDetail("value", c.Code)
	}
	for _, dc := range c.DialCodes {
		if dc.Code == "" {
			return apperror.NewValidation("dial code must not be empty").
				WithDetail("country", c.Code)
		}
	}
	return nil
}

// PrepareInsert stamps the country id onto children that do not reference
// their owner yet. Repositories call it before the cascading insert.
func (c *Country) PrepareInsert() {
	for _, dc := range c.DialCodes {
		if dc.CountryID == nil {
			dc.CountryID = id.Ptr(c.ID)
		}
	}
	for _, n := range c.Names {
		if n.CountryID == nil {
			n.CountryID = id.Ptr(c.ID)
		}
	}
}

// DialCode returns the dial code row with the given code, or nil.
func (c *Country) DialCode(code string) *DialCode {
	for _, dc := range c.DialCodes {
		if dc.Code == code {
			return dc
		}
	}
	return nil
}

// VmJsonName is a localized name of an imported item.
type VmJsonName struct {
	Language string `json:"language" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// VmJsonCountry is one entry of the country import file.
type VmJsonCountry struct {
	Code      string       `json:"code" validate:"required,len=2"`
	DialCodes []string     `json:"dialCodes"`
	Names     []VmJsonName `json:"names" validate:"dive"`
}
