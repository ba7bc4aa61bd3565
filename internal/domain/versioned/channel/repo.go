package channel

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain"
)

// Repository defines the interface for channel storage.
type Repository interface {
	domain.VersionedRepository[*Channel]

	// RootExists reports whether any version of the root exists.
	RootExists(ctx context.Context, rootID id.ID) (bool, error)
}
