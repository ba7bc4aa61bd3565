package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/types"
)

func newService() *Service {
	s := &Service{OrganizationID: id.Ptr(id.New()), TypeID: id.Ptr(types.SeedID(types.KindServiceType, "Service"))}
	s.SetName(types.SeedID(types.KindLanguage, "fi"), types.SeedID(types.KindNameType, types.NameTypeName), "Kirjastopalvelut")
	return s
}

func TestService_Validate(t *testing.T) {
	s := newService()
	assert.NoError(t, s.Validate(context.Background()))

	s.TypeID = nil
	assert.Error(t, s.Validate(context.Background()))
	s.GeneralDescriptionID = id.Ptr(id.New())
	assert.NoError(t, s.Validate(context.Background()), "general description supplies the type")

	class := id.New()
	s.ServiceClassIDs = []id.ID{class, class}
	assert.Error(t, s.Validate(context.Background()))
}

func TestService_ChannelConnections(t *testing.T) {
	s := newService()
	ch := id.New()
	s.ConnectChannel(ch)
	s.ConnectChannel(ch)
	assert.Equal(t, []id.ID{ch}, s.ChannelIDs)

	s.DisconnectChannel(ch)
	assert.Empty(t, s.ChannelIDs)
}

func TestCloner_IndependentLists(t *testing.T) {
	src := newService()
	src.ServiceClassIDs = []id.ID{id.New()}
	src.ChannelIDs = []id.ID{id.New()}

	dst := NewCloner(cloning.DefaultAggregateCloner()).Clone(src)
	dst.ServiceClassIDs[0] = id.New()
	dst.ConnectChannel(id.New())

	assert.NotEqual(t, src.ServiceClassIDs[0], dst.ServiceClassIDs[0])
	assert.Len(t, src.ChannelIDs, 1)
	assert.NotSame(t, src.OrganizationID, dst.OrganizationID)
	assert.Equal(t, map[string]any{
		"serviceClasses": 1, "ontologyTerms": 0, "targetGroups": 0, "hasGeneralDescription": false,
	}, src.RuleAttributes())
}
