// Package channel provides service channels: the ways a service is reached
// (web page, electronic service, phone, printable form, service location).
package channel

import (
	"context"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
)

// Kind is the channel type code.
type Kind string

const (
	KindEChannel        Kind = "EChannel"
	KindWebPage         Kind = "WebPage"
	KindPrintableForm   Kind = "PrintableForm"
	KindPhone           Kind = "Phone"
	KindServiceLocation Kind = "ServiceLocation"
)

// Valid reports whether k is a known channel type.
func (k Kind) Valid() bool {
	switch k {
	case KindEChannel, KindWebPage, KindPrintableForm, KindPhone, KindServiceLocation:
		return true
	}
	return false
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{5,30}$`)

// Address is the visiting address of a service location.
type Address struct {
	Street       string   `json:"street"`
	StreetNumber string   `json:"streetNumber,omitempty"`
	PostalCode   string   `json:"postalCode"`
	Municipality string   `json:"municipality"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Channel is one version of a service channel.
type Channel struct {
	entity.VersionedAggregate

	OrganizationID *id.ID `db:"organization_id" json:"organizationId,omitempty"`
	Kind           Kind   `db:"channel_kind" json:"kind"`

	URL            string   `db:"url" json:"url,omitempty"`
	PhoneNumber    string   `db:"phone_number" json:"phoneNumber,omitempty"`
	FormIdentifier string   `db:"form_identifier" json:"formIdentifier,omitempty"`
	Address        *Address `db:"address" json:"address,omitempty"`

	// AreaMunicipalityCodes limits the channel to municipalities; empty means nationwide
	AreaMunicipalityCodes []string `db:"area_municipality_codes" json:"areaMunicipalityCodes"`
}

// Validate implements entity.Validatable interface.
func (c *Channel) Validate(ctx context.Context) error {
	if err := c.ValidateNames(); err != nil {
		return err
	}
	if c.OrganizationID == nil {
		return apperror.NewValidation("organization is required")
	}
	if !c.Kind.Valid() {
		return apperror.NewValidation("unknown channel type").WithDetail("kind", string(c.Kind))
	}

	switch c.Kind {
	case KindEChannel, KindWebPage:
		if err := validateURL(c.URL); err != nil {
			return err
		}
	case KindPhone:
		if !phonePattern.MatchString(strings.TrimSpace(c.PhoneNumber)) {
			return apperror.NewValidation("invalid phone number").WithDetail("phoneNumber", c.PhoneNumber)
		}
	case KindPrintableForm:
		if c.FormIdentifier == "" && c.URL == "" {
			return apperror.NewValidation("printable form needs an identifier or a url")
		}
		if c.URL != "" {
			if err := validateURL(c.URL); err != nil {
				return err
			}
		}
	case KindServiceLocation:
		if c.Address == nil || c.Address.Street == "" || c.Address.PostalCode == "" {
			return apperror.NewValidation("service location needs a street address")
		}
		if (c.Address.Latitude == nil) != (c.Address.Longitude == nil) {
			return apperror.NewValidation("coordinates need both latitude and longitude")
		}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.NewValidation("invalid url").WithDetail("url", raw)
	}
	return nil
}

// OwnerOrganization implements domain.Versioned.
func (c *Channel) OwnerOrganization() *id.ID {
	return c.OrganizationID
}

// RuleAttributes implements domain.Versioned.
func (c *Channel) RuleAttributes() map[string]any {
	return map[string]any{
		"kind":  string(c.Kind),
		"url":   c.URL,
		"phone": c.PhoneNumber,
	}
}

// NewCloner returns the deep copy cloner of channels.
func NewCloner(agg *cloning.AggregateCloner) cloning.Cloner[Channel] {
	return cloning.Kind(agg,
		func(c *Channel) *entity.VersionedAggregate { return &c.VersionedAggregate },
		func(dst, src *Channel) {
			if src.OrganizationID != nil {
				dst.OrganizationID = id.Ptr(*src.OrganizationID)
			}
			dst.Kind = src.Kind
			dst.URL = src.URL
			dst.PhoneNumber = src.PhoneNumber
			dst.FormIdentifier = src.FormIdentifier
			if src.Address != nil {
				a := *src.Address
				if a.Latitude != nil {
					lat := *a.Latitude
					a.Latitude = &lat
				}
				if a.Longitude != nil {
					lon := *a.Longitude
					a.Longitude = &lon
				}
				dst.Address = &a
			}
			dst.AreaMunicipalityCodes = slices.Clone(src.AreaMunicipalityCodes)
		})
}
