package dto

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/internal/domain/versioned/organization"
)

// OrganizationRequest is the body of organization create and save.
type OrganizationRequest struct {
	VersionedRequest

	ParentID         *id.ID `json:"parentId"`
	BusinessCode     string `json:"businessCode"`
	Type             string `json:"type"`
	Oid              string `json:"oid"`
	MunicipalityCode string `json:"municipalityCode"`
}

// Apply writes the request onto o.
func (r OrganizationRequest) Apply(cache types.Cache, o *organization.Organization) error {
	if err := r.VersionedRequest.Apply(cache, &o.VersionedAggregate); err != nil {
		return err
	}
	var err error
	if o.TypeID, err = optionalType(cache, types.KindOrganizationType, r.Type, "type"); err != nil {
		return err
	}
	o.ParentID = r.ParentID
	o.BusinessCode = r.BusinessCode
	o.Oid = r.Oid
	o.MunicipalityCode = r.MunicipalityCode
	return nil
}

// OrganizationResponse is the read model of an organization version.
type OrganizationResponse struct {
	VersionedResponse

	ParentID         *id.ID `json:"parentId,omitempty"`
	BusinessCode     string `json:"businessCode,omitempty"`
	Type             string `json:"type,omitempty"`
	Oid              string `json:"oid,omitempty"`
	MunicipalityCode string `json:"municipalityCode,omitempty"`
	IsMain           bool   `json:"isMain"`
}

// FromOrganization renders o.
func FromOrganization(ctx context.Context, cache types.Cache, o *organization.Organization) (OrganizationResponse, error) {
	base, err := FromAggregate(ctx, cache, &o.VersionedAggregate)
	if err != nil {
		return OrganizationResponse{}, err
	}
	return OrganizationResponse{
		VersionedResponse: base,
		ParentID:          o.ParentID,
		BusinessCode:      o.BusinessCode,
		Type:              typeCode(cache, types.KindOrganizationType, o.TypeID),
		Oid:               o.Oid,
		MunicipalityCode:  o.MunicipalityCode,
		IsMain:            o.IsMain(),
	}, nil
}

// OrganizationHierarchyResponse places a root in the cached hierarchy.
type OrganizationHierarchyResponse struct {
	RootID        id.ID   `json:"unificRootId"`
	MainID        id.ID   `json:"mainOrganizationId"`
	DescendantIDs []id.ID `json:"descendantIds"`
}
