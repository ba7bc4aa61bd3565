package dto

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/internal/domain/versioned/channel"
)

// ChannelRequest is the body of channel create and save.
type ChannelRequest struct {
	VersionedRequest

	OrganizationID        *id.ID           `json:"organizationId" binding:"required"`
	Kind                  channel.Kind     `json:"kind" binding:"required"`
	URL                   string           `json:"url"`
	PhoneNumber           string           `json:"phoneNumber"`
	FormIdentifier        string           `json:"formIdentifier"`
	Address               *channel.Address `json:"address"`
	AreaMunicipalityCodes []string         `json:"areaMunicipalityCodes"`
}

// Apply writes the request onto c.
func (r ChannelRequest) Apply(cache types.Cache, c *channel.Channel) error {
	if err := r.VersionedRequest.Apply(cache, &c.VersionedAggregate); err != nil {
		return err
	}
	c.OrganizationID = r.OrganizationID
	c.Kind = r.Kind
	c.URL = r.URL
	c.PhoneNumber = r.PhoneNumber
	c.FormIdentifier = r.FormIdentifier
	c.Address = r.Address
	c.AreaMunicipalityCodes = r.AreaMunicipalityCodes
	if c.AreaMunicipalityCodes == nil {
		c.AreaMunicipalityCodes = []string{}
	}
	return nil
}

// ChannelResponse is the read model of a channel version.
type ChannelResponse struct {
	VersionedResponse

	OrganizationID        *id.ID           `json:"organizationId,omitempty"`
	Kind                  channel.Kind     `json:"kind"`
	URL                   string           `json:"url,omitempty"`
	PhoneNumber           string           `json:"phoneNumber,omitempty"`
	FormIdentifier        string           `json:"formIdentifier,omitempty"`
	Address               *channel.Address `json:"address,omitempty"`
	AreaMunicipalityCodes []string         `json:"areaMunicipalityCodes"`
}

// FromChannel renders c.
func FromChannel(ctx context.Context, cache types.Cache, c *channel.Channel) (ChannelResponse, error) {
	base, err := FromAggregate(ctx, cache, &c.VersionedAggregate)
	if err != nil {
		return ChannelResponse{}, err
	}
	areas := c.AreaMunicipalityCodes
	if areas == nil {
		areas = []string{}
	}
	return ChannelResponse{
		VersionedResponse:     base,
		OrganizationID:        c.OrganizationID,
		Kind:                  c.Kind,
		URL:                   c.URL,
		PhoneNumber:           c.PhoneNumber,
		FormIdentifier:        c.FormIdentifier,
		Address:               c.Address,
		AreaMunicipalityCodes: areas,
	}, nil
}
