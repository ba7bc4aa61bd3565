// Package domain provides the generic lifecycle of versioned registry entities.
package domain

import (
	"context"
	"time"

	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/filter"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches names in any language
	Search string

	// IDs filters by version ids
	IDs []id.ID

	// OrganizationIDs filters by owning organization (unific root ids)
	OrganizationIDs []id.ID

	// StatusIDs filters by entity publishing status
	StatusIDs []id.ID

	// LatestOnly keeps only the newest version of every root
	LatestOnly bool

	// AdvancedFilters are arbitrary column conditions
	AdvancedFilters []filter.Item

	// OrderBy specifies sorting (e.g., "modified", "-modified")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:      50,
		OrderBy:    "-modified",
		LatestOnly: true,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// VersionedRepository stores versions of one entity kind. Every method loads or
// writes the version row together with its names, descriptions and language
// availabilities.
type VersionedRepository[T entity.LanguageVersioned] interface {
	// Create inserts a new version row
	Create(ctx context.Context, entity T) error

	// Update modifies a version with optimistic locking on row_version
	Update(ctx context.Context, entity T) error

	// GetByID retrieves a version by id
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetLatest retrieves the version with the highest number of a root
	GetLatest(ctx context.Context, rootID id.ID) (T, error)

	// GetLastPublished retrieves the published version of a root
	GetLastPublished(ctx context.Context, rootID id.ID) (T, error)

	// ListVersions retrieves every version of a root, oldest first
	ListVersions(ctx context.Context, rootID id.ID) ([]T, error)

	// List retrieves versions with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// ListScheduled retrieves versions with a language whose ValidFrom or
	// ValidTo has passed at now
	ListScheduled(ctx context.Context, now time.Time) ([]T, error)
}

// HistoryRecorder keeps an append-only log of lifecycle actions.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, entityType string, rootID id.ID) ([]HistoryEntry, error)
}

// HistoryEntry is one recorded lifecycle action.
type HistoryEntry struct {
	ID         id.ID     `json:"id"`
	EntityType string    `json:"entityType"`
	RootID     id.ID     `json:"rootId"`
	VersionID  id.ID     `json:"versionId"`
	Action     string    `json:"action"`
	Version    string    `json:"version"`
	Status     string    `json:"status"`
	UserID     string    `json:"userId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	// Snapshot is the version as JSON at the time of the action
	Snapshot []byte `json:"snapshot,omitempty"`
}

// History actions.
const (
	ActionCreate   = "create"
	ActionSave     = "save"
	ActionPublish  = "publish"
	ActionArchive  = "archive"
	ActionRestore  = "restore"
	ActionWithdraw = "withdraw"
)

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate  HookEvent = "before_create"
	AfterCreate   HookEvent = "after_create"
	BeforeSave    HookEvent = "before_save"
	AfterSave     HookEvent = "after_save"
	BeforePublish HookEvent = "before_publish"
	AfterPublish  HookEvent = "after_publish"
	BeforeArchive HookEvent = "before_archive"
	AfterArchive  HookEvent = "after_archive"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnBeforeSave registers a hook to run before a version is saved.
func (r *HookRegistry[T]) OnBeforeSave(hook Hook[T]) {
	r.On(BeforeSave, hook)
}

// OnBeforePublish registers a hook to run before publishing.
func (r *HookRegistry[T]) OnBeforePublish(hook Hook[T]) {
	r.On(BeforePublish, hook)
}

// OnAfterPublish registers a hook to run after a committed publish.
func (r *HookRegistry[T]) OnAfterPublish(hook Hook[T]) {
	r.On(AfterPublish, hook)
}
