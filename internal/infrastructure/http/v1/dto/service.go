package dto

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/internal/domain/versioned/service"
)

// ServiceRequest is the body of service create and save.
type ServiceRequest struct {
	VersionedRequest

	OrganizationID       *id.ID  `json:"organizationId" binding:"required"`
	Type                 string  `json:"type"`
	ChargeType           string  `json:"chargeType"`
	GeneralDescriptionID *id.ID  `json:"generalDescriptionId"`
	ServiceClassIDs      []id.ID `json:"serviceClassIds"`
	OntologyTermIDs      []id.ID `json:"ontologyTermIds"`
	TargetGroupIDs       []id.ID `json:"targetGroupIds"`
	LifeEventIDs         []id.ID `json:"lifeEventIds"`
	IndustrialClassIDs   []id.ID `json:"industrialClassIds"`
	ChannelIDs           []id.ID `json:"channelIds"`
}

// Apply writes the request onto s.
func (r ServiceRequest) Apply(cache types.Cache, s *service.Service) error {
	if err := r.VersionedRequest.Apply(cache, &s.VersionedAggregate); err != nil {
		return err
	}
	var err error
	if s.TypeID, err = optionalType(cache, types.KindServiceType, r.Type, "type"); err != nil {
		return err
	}
	if s.ChargeTypeID, err = optionalType(cache, types.KindChargeType, r.ChargeType, "chargeType"); err != nil {
		return err
	}
	s.OrganizationID = r.OrganizationID
	s.GeneralDescriptionID = r.GeneralDescriptionID
	s.ServiceClassIDs = orEmpty(r.ServiceClassIDs)
	s.OntologyTermIDs = orEmpty(r.OntologyTermIDs)
	s.TargetGroupIDs = orEmpty(r.TargetGroupIDs)
	s.LifeEventIDs = orEmpty(r.LifeEventIDs)
	s.IndustrialClassIDs = orEmpty(r.IndustrialClassIDs)
	s.ChannelIDs = orEmpty(r.ChannelIDs)
	return nil
}

// ServiceResponse is the read model of a service version.
type ServiceResponse struct {
	VersionedResponse

	OrganizationID       *id.ID  `json:"organizationId,omitempty"`
	Type                 string  `json:"type,omitempty"`
	ChargeType           string  `json:"chargeType,omitempty"`
	GeneralDescriptionID *id.ID  `json:"generalDescriptionId,omitempty"`
	ServiceClassIDs      []id.ID `json:"serviceClassIds"`
	OntologyTermIDs      []id.ID `json:"ontologyTermIds"`
	TargetGroupIDs       []id.ID `json:"targetGroupIds"`
	LifeEventIDs         []id.ID `json:"lifeEventIds"`
	IndustrialClassIDs   []id.ID `json:"industrialClassIds"`
	ChannelIDs           []id.ID `json:"channelIds"`
}

// FromService renders s.
func FromService(ctx context.Context, cache types.Cache, s *service.Service) (ServiceResponse, error) {
	base, err := FromAggregate(ctx, cache, &s.VersionedAggregate)
	if err != nil {
		return ServiceResponse{}, err
	}
	return ServiceResponse{
		VersionedResponse:    base,
		OrganizationID:       s.OrganizationID,
		Type:                 typeCode(cache, types.KindServiceType, s.TypeID),
		ChargeType:           typeCode(cache, types.KindChargeType, s.ChargeTypeID),
		GeneralDescriptionID: s.GeneralDescriptionID,
		ServiceClassIDs:      orEmpty(s.ServiceClassIDs),
		OntologyTermIDs:      orEmpty(s.OntologyTermIDs),
		TargetGroupIDs:       orEmpty(s.TargetGroupIDs),
		LifeEventIDs:         orEmpty(s.LifeEventIDs),
		IndustrialClassIDs:   orEmpty(s.IndustrialClassIDs),
		ChannelIDs:           orEmpty(s.ChannelIDs),
	}, nil
}
