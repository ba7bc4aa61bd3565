// Package service provides the Service kind: a public service offered by an
// organization, classified through finto vocabularies and connected to channels.
package service

import (
	"context"
	"slices"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
)

// Service is one version of a service.
type Service struct {
	entity.VersionedAggregate

	// OrganizationID is the unific root of the main responsible organization
	OrganizationID *id.ID `db:"organization_id" json:"organizationId,omitempty"`

	// TypeID is the service type; optional when a general description supplies it
	TypeID       *id.ID `db:"type_id" json:"typeId,omitempty"`
	ChargeTypeID *id.ID `db:"charge_type_id" json:"chargeTypeId,omitempty"`

	// GeneralDescriptionID is the unific root of the attached general description
	GeneralDescriptionID *id.ID `db:"general_description_id" json:"generalDescriptionId,omitempty"`

	// Finto classifications (tree item and ontology term ids)
	ServiceClassIDs    []id.ID `db:"service_class_ids" json:"serviceClassIds"`
	OntologyTermIDs    []id.ID `db:"ontology_term_ids" json:"ontologyTermIds"`
	TargetGroupIDs     []id.ID `db:"target_group_ids" json:"targetGroupIds"`
	LifeEventIDs       []id.ID `db:"life_event_ids" json:"lifeEventIds"`
	IndustrialClassIDs []id.ID `db:"industrial_class_ids" json:"industrialClassIds"`

	// ChannelIDs are unific roots of connected service channels
	ChannelIDs []id.ID `db:"channel_ids" json:"channelIds"`
}

// Validate implements entity.Validatable interface.
func (s *Service) Validate(ctx context.Context) error {
	if err := s.ValidateNames(); err != nil {
		return err
	}
	if s.OrganizationID == nil {
		return apperror.NewValidation("organization is required")
	}
	if s.TypeID == nil && s.GeneralDescriptionID == nil {
		return apperror.NewValidation("service type is required without a general description")
	}
	lists := map[string][]id.ID{
		"serviceClassIds":    s.ServiceClassIDs,
		"ontologyTermIds":    s.OntologyTermIDs,
		"targetGroupIds":     s.TargetGroupIDs,
		"lifeEventIds":       s.LifeEventIDs,
		"industrialClassIds": s.IndustrialClassIDs,
		"channelIds":         s.ChannelIDs,
	}
	for field, ids := range lists {
		if dup, ok := id.FirstDuplicate(ids); ok {
			return apperror.NewValidation("duplicate reference").
				WithDetail("field", field).WithDetail("id", dup.String())
		}
	}
	return nil
}

// OwnerOrganization implements domain.Versioned.
func (s *Service) OwnerOrganization() *id.ID {
	return s.OrganizationID
}

// RuleAttributes implements domain.Versioned.
func (s *Service) RuleAttributes() map[string]any {
	return map[string]any{
		"serviceClasses":        len(s.ServiceClassIDs),
		"ontologyTerms":         len(s.OntologyTermIDs),
		"targetGroups":          len(s.TargetGroupIDs),
		"hasGeneralDescription": s.GeneralDescriptionID != nil,
	}
}

// ConnectChannel adds a channel connection once.
func (s *Service) ConnectChannel(channelRootID id.ID) {
	if !slices.Contains(s.ChannelIDs, channelRootID) {
		s.ChannelIDs = append(s.ChannelIDs, channelRootID)
	}
}

// DisconnectChannel removes a channel connection.
func (s *Service) DisconnectChannel(channelRootID id.ID) {
	s.ChannelIDs = slices.DeleteFunc(s.ChannelIDs, func(v id.ID) bool { return v == channelRootID })
}

// NewCloner returns the deep copy cloner of services.
func NewCloner(agg *cloning.AggregateCloner) cloning.Cloner[Service] {
	return cloning.Kind(agg,
		func(s *Service) *entity.VersionedAggregate { return &s.VersionedAggregate },
		func(dst, src *Service) {
			dst.OrganizationID = idPtr(src.OrganizationID)
			dst.TypeID = idPtr(src.TypeID)
			dst.ChargeTypeID = idPtr(src.ChargeTypeID)
			dst.GeneralDescriptionID = idPtr(src.GeneralDescriptionID)
			dst.ServiceClassIDs = slices.Clone(src.ServiceClassIDs)
			dst.OntologyTermIDs = slices.Clone(src.OntologyTermIDs)
			dst.TargetGroupIDs = slices.Clone(src.TargetGroupIDs)
			dst.LifeEventIDs = slices.Clone(src.LifeEventIDs)
			dst.IndustrialClassIDs = slices.Clone(src.IndustrialClassIDs)
			dst.ChannelIDs = slices.Clone(src.ChannelIDs)
		})
}

func idPtr(v *id.ID) *id.ID {
	if v == nil {
		return nil
	}
	return id.Ptr(*v)
}
