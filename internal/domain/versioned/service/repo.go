package service

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/domain"
)

// Repository defines the interface for service storage.
type Repository interface {
	domain.VersionedRepository[*Service]

	// ListByChannel returns the latest versions connected to a channel root.
	ListByChannel(ctx context.Context, channelRootID id.ID) ([]*Service, error)
}
