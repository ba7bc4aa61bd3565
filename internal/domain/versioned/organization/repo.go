package organization

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain"
)

// Repository defines the interface for organization storage.
type Repository interface {
	domain.VersionedRepository[*Organization]

	// BusinessCodeTaken reports whether another root uses the business code
	// in a version that is not deleted.
	BusinessCodeTaken(ctx context.Context, code string, exceptRootID id.ID) (bool, error)
}
