// Package generaldescription provides general descriptions: nationally maintained
// service templates that services attach to inherit texts and classifications.
package generaldescription

import (
	"context"
	"slices"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/cloning"
)

// GeneralDescription is one version of a general description. It has no owning
// organization and is maintained by administrators only.
type GeneralDescription struct {
	entity.VersionedAggregate

	TypeID         *id.ID `db:"type_id" json:"typeId,omitempty"`
	ChargeTypeID   *id.ID `db:"charge_type_id" json:"chargeTypeId,omitempty"`
	ProducerTypeID *id.ID `db:"producer_type_id" json:"producerTypeId,omitempty"`

	ServiceClassIDs []id.ID `db:"service_class_ids" json:"serviceClassIds"`
	OntologyTermIDs []id.ID `db:"ontology_term_ids" json:"ontologyTermIds"`
	TargetGroupIDs  []id.ID `db:"target_group_ids" json:"targetGroupIds"`
	LifeEventIDs    []id.ID `db:"life_event_ids" json:"lifeEventIds"`
}

// Validate implements entity.Validatable interface.
func (g *GeneralDescription) Validate(ctx context.Context) error {
	if err := g.ValidateNames(); err != nil {
		return err
	}
	if g.TypeID == nil {
		return apperror.NewValidation("service type is required")
	}
	if len(g.ServiceClassIDs) == 0 {
		return apperror.NewValidation("at least one service class is required")
	}
	for _, ids := range [][]id.ID{g.ServiceClassIDs, g.OntologyTermIDs, g.TargetGroupIDs, g.LifeEventIDs} {
		if dup, ok := id.FirstDuplicate(ids); ok {
			return apperror.NewValidation("duplicate reference").WithDetail("id", dup.String())
		}
	}
	return nil
}

// OwnerOrganization implements domain.Versioned.
func (g *GeneralDescription) OwnerOrganization() *id.ID {
	return nil
}

// RuleAttributes implements domain.Versioned.
func (g *GeneralDescription) RuleAttributes() map[string]any {
	return map[string]any{
		"serviceClasses": len(g.ServiceClassIDs),
		"targetGroups":   len(g.TargetGroupIDs),
	}
}

// NewCloner returns the deep copy cloner of general descriptions.
func NewCloner(agg *cloning.AggregateCloner) cloning.Cloner[GeneralDescription] {
	return cloning.Kind(agg,
		func(g *GeneralDescription) *entity.VersionedAggregate { return &g.VersionedAggregate },
		func(dst, src *GeneralDescription) {
			for _, p := range []struct{ dst, src **id.ID }{
				{&dst.TypeID, &src.TypeID},
				{&dst.ChargeTypeID, &src.ChargeTypeID},
				{&dst.ProducerTypeID, &src.ProducerTypeID},
			} {
				if *p.src != nil {
					*p.dst = id.Ptr(**p.src)
				}
			}
			dst.ServiceClassIDs = slices.Clone(src.ServiceClassIDs)
			dst.OntologyTermIDs = slices.Clone(src.OntologyTermIDs)
			dst.TargetGroupIDs = slices.Clone(src.TargetGroupIDs)
			dst.LifeEventIDs = slices.Clone(src.LifeEventIDs)
		})
}
