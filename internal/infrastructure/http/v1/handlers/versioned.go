// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/domain"
	domainFilter "ptv/internal/domain/filter"
	"ptv/internal/domain/types"
	"ptv/internal/infrastructure/http/v1/dto"
)

// Lifecycle is the part of domain.VersionedService the handlers call.
type Lifecycle[T domain.Versioned] interface {
	Create(ctx context.Context, e T) error
	GetByID(ctx context.Context, versionID id.ID) (T, error)
	GetLatest(ctx context.Context, rootID id.ID) (T, error)
	GetLastPublished(ctx context.Context, rootID id.ID) (T, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	Save(ctx context.Context, e T) (T, error)
	Publish(ctx context.Context, versionID id.ID, languages []id.ID) (T, error)
	Archive(ctx context.Context, versionID id.ID) (T, error)
	Restore(ctx context.Context, versionID id.ID) (T, error)
	Withdraw(ctx context.Context, versionID id.ID) (T, error)
	History(ctx context.Context, rootID id.ID) ([]domain.HistoryEntry, error)
}

// VersionedHandler provides generic HTTP handlers for versioned entities.
type VersionedHandler[T domain.Versioned, Req any] struct {
	*BaseHandler
	service Lifecycle[T]
	types   types.Cache

	newEntity func() T
	apply     func(req Req, cache types.Cache, e T) error
	toDTO     func(ctx context.Context, cache types.Cache, e T) (any, error)
}

// VersionedHandlerConfig configures the versioned handler.
type VersionedHandlerConfig[T domain.Versioned, Req any] struct {
	Service Lifecycle[T]
	Types   types.Cache
	New     func() T
	Apply   func(req Req, cache types.Cache, e T) error
	ToDTO   func(ctx context.Context, cache types.Cache, e T) (any, error)
}

// NewVersionedHandler creates a new versioned handler.
func NewVersionedHandler[T domain.Versioned, Req any](
	base *BaseHandler,
	cfg VersionedHandlerConfig[T, Req],
) *VersionedHandler[T, Req] {
	return &VersionedHandler[T, Req]{
		BaseHandler: base,
		service:     cfg.Service,
		types:       cfg.Types,
		newEntity:   cfg.New,
		apply:       cfg.Apply,
		toDTO:       cfg.ToDTO,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *VersionedHandler[T, Req]) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", filter.OrderBy)
	if v := c.Query("latestOnly"); v != "" {
		filter.LatestOnly = v != "false"
	}

	for _, raw := range c.QueryArray("organizationId") {
		orgID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid organizationId").WithDetail("organizationId", raw))
			return
		}
		filter.OrganizationIDs = append(filter.OrganizationIDs, orgID)
	}
	for _, code := range c.QueryArray("status") {
		statusID, err := h.types.Get(types.KindPublishingStatus, code)
		if err != nil {
			h.Error(c, apperror.NewValidation("unknown publishing status").WithDetail("status", code))
			return
		}
		filter.StatusIDs = append(filter.StatusIDs, statusID)
	}

	if filterJSON := c.Query("filter"); filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		filter.AdvancedFilters = advFilters
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, 0, len(result.Items))
	for _, item := range result.Items {
		out, err := h.toDTO(ctx, h.types, item)
		if err != nil {
			h.Error(c, err)
			return
		}
		items = append(items, out)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id - get a single version.
func (h *VersionedHandler[T, Req]) Get(c *gin.Context) {
	h.byID(c, "id", h.service.GetByID)
}

// GetLatest handles GET /{entity}/roots/:rootId/latest.
func (h *VersionedHandler[T, Req]) GetLatest(c *gin.Context) {
	h.byID(c, "rootId", h.service.GetLatest)
}

// GetPublished handles GET /{entity}/roots/:rootId/published.
func (h *VersionedHandler[T, Req]) GetPublished(c *gin.Context) {
	h.byID(c, "rootId", h.service.GetLastPublished)
}

// Create handles POST /{entity} - create the first draft of a new root.
func (h *VersionedHandler[T, Req]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}
	e := h.newEntity()
	if err := h.apply(req, h.types, e); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(ctx, e); err != nil {
		h.Error(c, err)
		return
	}
	h.respond(c, e, true)
}

// Save handles PUT /{entity}/:id - store an edited version.
func (h *VersionedHandler[T, Req]) Save(c *gin.Context) {
	ctx := c.Request.Context()

	versionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}
	e := h.newEntity()
	if err := h.apply(req, h.types, e); err != nil {
		h.Error(c, err)
		return
	}
	e.Aggregate().ID = versionID

	saved, err := h.service.Save(ctx, e)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.respond(c, saved, false)
}

// Publish handles POST /{entity}/:id/publish.
func (h *VersionedHandler[T, Req]) Publish(c *gin.Context) {
	ctx := c.Request.Context()

	versionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PublishRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	languages, err := req.LanguageIDs(h.types)
	if err != nil {
		h.Error(c, err)
		return
	}

	published, err := h.service.Publish(ctx, versionID, languages)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.respond(c, published, false)
}

// Archive handles POST /{entity}/:id/archive.
func (h *VersionedHandler[T, Req]) Archive(c *gin.Context) {
	h.byID(c, "id", h.service.Archive)
}

// Restore handles POST /{entity}/:id/restore.
func (h *VersionedHandler[T, Req]) Restore(c *gin.Context) {
	h.byID(c, "id", h.service.Restore)
}

// Withdraw handles POST /{entity}/:id/withdraw.
func (h *VersionedHandler[T, Req]) Withdraw(c *gin.Context) {
	h.byID(c, "id", h.service.Withdraw)
}

// History handles GET /{entity}/roots/:rootId/history.
func (h *VersionedHandler[T, Req]) History(c *gin.Context) {
	rootID, ok := h.ParseID(c, "rootId")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), rootID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	h.OK(c, entries)
}

func (h *VersionedHandler[T, Req]) byID(c *gin.Context, param string, fn func(context.Context, id.ID) (T, error)) {
	v, ok := h.ParseID(c, param)
	if !ok {
		return
	}
	e, err := fn(c.Request.Context(), v)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.respond(c, e, false)
}

func (h *VersionedHandler[T, Req]) respond(c *gin.Context, e T, created bool) {
	out, err := h.toDTO(c.Request.Context(), h.types, e)
	if err != nil {
		h.Error(c, err)
		return
	}
	if created {
		h.Created(c, out)
		return
	}
	h.OK(c, out)
}

