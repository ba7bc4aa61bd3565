package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/types"
)

func newChannel(kind Kind) *Channel {
	c := &Channel{OrganizationID: id.Ptr(id.New()), Kind: kind}
	c.SetName(types.SeedID(types.KindLanguage, "fi"), types.SeedID(types.KindNameType, types.NameTypeName), "Asiointi")
	return c
}

func TestChannel_Validate(t *testing.T) {
	lat, lon := 60.17, 24.94
	tests := []struct {
		name    string
		mutate  func(c *Channel)
		kind    Kind
		wantErr bool
	}{
		{"web page ok", func(c *Channel) { c.URL = "https://www.suomi.fi" }, KindWebPage, false},
		{"web page without scheme", func(c *Channel) { c.URL = "www.suomi.fi" }, KindWebPage, true},
		{"echannel ftp", func(c *Channel) { c.URL = "ftp://files.example.fi" }, KindEChannel, true},
		{"phone ok", func(c *Channel) { c.PhoneNumber = "+358 9 123 456" }, KindPhone, false},
		{"phone letters", func(c *Channel) { c.PhoneNumber = "call us" }, KindPhone, true},
		{"form by identifier", func(c *Channel) { c.FormIdentifier = "LOM-12" }, KindPrintableForm, false},
		{"form empty", func(c *Channel) {}, KindPrintableForm, true},
		{"location ok", func(c *Channel) {
			c.Address = &Address{Street: "Mannerheimintie", PostalCode: "00100", Latitude: &lat, Longitude: &lon}
		}, KindServiceLocation, false},
		{"location half coordinates", func(c *Channel) {
			c.Address = &Address{Street: "Mannerheimintie", PostalCode: "00100", Latitude: &lat}
		}, KindServiceLocation, true},
		{"unknown kind", func(c *Channel) {}, Kind("Fax"), true},
		{"no organization", func(c *Channel) { c.OrganizationID = nil; c.URL = "https://x.fi" }, KindWebPage, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChannel(tt.kind)
			tt.mutate(c)
			err := c.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloner_DeepCopiesAddress(t *testing.T) {
	lat, lon := 61.5, 23.7
	src := newChannel(KindServiceLocation)
	src.Address = &Address{Street: "Hämeenkatu", PostalCode: "33100", Latitude: &lat, Longitude: &lon}
	src.AreaMunicipalityCodes = []string{"837"}

	dst := NewCloner(cloning.DefaultAggregateCloner()).Clone(src)

	require.NotNil(t, dst.Address)
	assert.NotSame(t, src.Address, dst.Address)
	assert.NotSame(t, src.Address.Latitude, dst.Address.Latitude)
	dst.AreaMunicipalityCodes[0] = "091"
	assert.Equal(t, "837", src.AreaMunicipalityCodes[0])
	assert.Equal(t, *src.OrganizationID, *dst.OrganizationID)
}
