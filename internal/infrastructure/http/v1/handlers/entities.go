package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ptv/internal/core/id"
	"ptv/internal/domain/types"
	"ptv/internal/domain/versioned/channel"
	"ptv/internal/domain/versioned/generaldescription"
	"ptv/internal/domain/versioned/organization"
	"ptv/internal/domain/versioned/service"
	"ptv/internal/infrastructure/http/v1/dto"
)

// --- Services ---

// ChannelServiceLister lists the services connected to a channel.
type ChannelServiceLister interface {
	ListByChannel(ctx context.Context, channelRootID id.ID) ([]*service.Service, error)
}

// ServiceHandler handles service HTTP requests.
type ServiceHandler struct {
	*VersionedHandler[*service.Service, dto.ServiceRequest]
	lister ChannelServiceLister
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(base *BaseHandler, svc Lifecycle[*service.Service], lister ChannelServiceLister, cache types.Cache) *ServiceHandler {
	cfg := VersionedHandlerConfig[*service.Service, dto.ServiceRequest]{
		Service: svc,
		Types:   cache,
		New:     func() *service.Service { return &service.Service{} },
		Apply:   dto.ServiceRequest.Apply,
		ToDTO: func(ctx context.Context, cache types.Cache, s *service.Service) (any, error) {
			return dto.FromService(ctx, cache, s)
		},
	}
	return &ServiceHandler{
		VersionedHandler: NewVersionedHandler(base, cfg),
		lister:           lister,
	}
}

// ListByChannel handles GET /services/by-channel/:channelId.
func (h *ServiceHandler) ListByChannel(c *gin.Context) {
	ctx := c.Request.Context()

	channelID, ok := h.ParseID(c, "channelId")
	if !ok {
		return
	}
	items, err := h.lister.ListByChannel(ctx, channelID)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]any, 0, len(items))
	for _, s := range items {
		resp, err := h.toDTO(ctx, h.types, s)
		if err != nil {
			h.Error(c, err)
			return
		}
		out = append(out, resp)
	}
	h.OK(c, out)
}

// --- Channels ---

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(base *BaseHandler, svc Lifecycle[*channel.Channel], cache types.Cache) *VersionedHandler[*channel.Channel, dto.ChannelRequest] {
	return NewVersionedHandler(base, VersionedHandlerConfig[*channel.Channel, dto.ChannelRequest]{
		Service: svc,
		Types:   cache,
		New:     func() *channel.Channel { return &channel.Channel{} },
		Apply:   dto.ChannelRequest.Apply,
		ToDTO: func(ctx context.Context, cache types.Cache, ch *channel.Channel) (any, error) {
			return dto.FromChannel(ctx, cache, ch)
		},
	})
}

// --- General descriptions ---

// NewGeneralDescriptionHandler creates a new general description handler.
func NewGeneralDescriptionHandler(base *BaseHandler, svc Lifecycle[*generaldescription.GeneralDescription], cache types.Cache) *VersionedHandler[*generaldescription.GeneralDescription, dto.GeneralDescriptionRequest] {
	return NewVersionedHandler(base, VersionedHandlerConfig[*generaldescription.GeneralDescription, dto.GeneralDescriptionRequest]{
		Service: svc,
		Types:   cache,
		New:     func() *generaldescription.GeneralDescription { return &generaldescription.GeneralDescription{} },
		Apply:   dto.GeneralDescriptionRequest.Apply,
		ToDTO: func(ctx context.Context, cache types.Cache, g *generaldescription.GeneralDescription) (any, error) {
			return dto.FromGeneralDescription(ctx, cache, g)
		},
	})
}

// --- Organizations ---

// OrganizationTree answers hierarchy questions from the organization cache.
type OrganizationTree interface {
	MainOrganization(orgID id.ID) (id.ID, error)
	Descendants(orgID id.ID) []id.ID
}

// OrganizationHandler handles organization HTTP requests.
type OrganizationHandler struct {
	*VersionedHandler[*organization.Organization, dto.OrganizationRequest]
	tree OrganizationTree
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(base *BaseHandler, svc Lifecycle[*organization.Organization], tree OrganizationTree, cache types.Cache) *OrganizationHandler {
	cfg := VersionedHandlerConfig[*organization.Organization, dto.OrganizationRequest]{
		Service: svc,
		Types:   cache,
		New:     func() *organization.Organization { return &organization.Organization{} },
		Apply:   dto.OrganizationRequest.Apply,
		ToDTO: func(ctx context.Context, cache types.Cache, o *organization.Organization) (any, error) {
			return dto.FromOrganization(ctx, cache, o)
		},
	}
	return &OrganizationHandler{
		VersionedHandler: NewVersionedHandler(base, cfg),
		tree:             tree,
	}
}

// Hierarchy handles GET /organizations/roots/:rootId/hierarchy: the main
// organization of the root and every organization below the root.
func (h *OrganizationHandler) Hierarchy(c *gin.Context) {
	rootID, ok := h.ParseID(c, "rootId")
	if !ok {
		return
	}
	mainID, err := h.tree.MainOrganization(rootID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.OrganizationHierarchyResponse{
		RootID:        rootID,
		MainID:        mainID,
		DescendantIDs: h.tree.Descendants(rootID),
	})
}
