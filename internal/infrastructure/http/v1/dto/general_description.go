package dto

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/internal/domain/versioned/generaldescription"
)

// GeneralDescriptionRequest is the body of general description create and save.
type GeneralDescriptionRequest struct {
	VersionedRequest

	Type            string  `json:"type" binding:"required"`
	ChargeType      string  `json:"chargeType"`
	ProducerType    string  `json:"producerType"`
	ServiceClassIDs []id.ID `json:"serviceClassIds" binding:"required,min=1"`
	OntologyTermIDs []id.ID `json:"ontologyTermIds"`
	TargetGroupIDs  []id.ID `json:"targetGroupIds"`
	LifeEventIDs    []id.ID `json:"lifeEventIds"`
}

// Apply writes the request onto g.
func (r GeneralDescriptionRequest) Apply(cache types.Cache, g *generaldescription.GeneralDescription) error {
	if err := r.VersionedRequest.Apply(cache, &g.VersionedAggregate); err != nil {
		return err
	}
	var err error
	if g.TypeID, err = optionalType(cache, types.KindServiceType, r.Type, "type"); err != nil {
		return err
	}
	if g.ChargeTypeID, err = optionalType(cache, types.KindChargeType, r.ChargeType, "chargeType"); err != nil {
		return err
	}
	if g.ProducerTypeID, err = optionalType(cache, types.KindProducerType, r.ProducerType, "producerType"); err != nil {
		return err
	}
	g.ServiceClassIDs = orEmpty(r.ServiceClassIDs)
	g.OntologyTermIDs = orEmpty(r.OntologyTermIDs)
	g.TargetGroupIDs = orEmpty(r.TargetGroupIDs)
	g.LifeEventIDs = orEmpty(r.LifeEventIDs)
	return nil
}

// GeneralDescriptionResponse is the read model of a general description version.
type GeneralDescriptionResponse struct {
	VersionedResponse

	Type            string  `json:"type,omitempty"`
	ChargeType      string  `json:"chargeType,omitempty"`
	ProducerType    string  `json:"producerType,omitempty"`
	ServiceClassIDs []id.ID `json:"serviceClassIds"`
	OntologyTermIDs []id.ID `json:"ontologyTermIds"`
	TargetGroupIDs  []id.ID `json:"targetGroupIds"`
	LifeEventIDs    []id.ID `json:"lifeEventIds"`
}

// FromGeneralDescription renders g.
func FromGeneralDescription(ctx context.Context, cache types.Cache, g *generaldescription.GeneralDescription) (GeneralDescriptionResponse, error) {
	base, err := FromAggregate(ctx, cache, &g.VersionedAggregate)
	if err != nil {
		return GeneralDescriptionResponse{}, err
	}
	return GeneralDescriptionResponse{
		VersionedResponse: base,
		Type:              typeCode(cache, types.KindServiceType, g.TypeID),
		ChargeType:        typeCode(cache, types.KindChargeType, g.ChargeTypeID),
		ProducerType:      typeCode(cache, types.KindProducerType, g.ProducerTypeID),
		ServiceClassIDs:   orEmpty(g.ServiceClassIDs),
		OntologyTermIDs:   orEmpty(g.OntologyTermIDs),
		TargetGroupIDs:    orEmpty(g.TargetGroupIDs),
		LifeEventIDs:      orEmpty(g.LifeEventIDs),
	}, nil
}
