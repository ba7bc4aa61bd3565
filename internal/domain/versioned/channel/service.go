package channel

import (
	"context"

	"ptv/internal/core/id"
	"ptv/internal/core/tx"
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/validation"
)

// Service provides business logic for service channels.
type Service struct {
	*domain.VersionedService[*Channel]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new channel service.
func NewService(base domain.VersionedServiceConfig[*Channel], repo Repository) *Service {
	base.Repo = repo
	base.EntityName = "channel"
	base.RuleKind = validation.KindChannel
	if base.Clone == nil {
		base.Clone = NewCloner(cloning.DefaultAggregateCloner()).Clone
	}
	return &Service{
		VersionedService: domain.NewVersionedService(base),
		repo:             repo,
		txManager:        base.TxManager,
	}
}

// RootExists reports whether the channel root exists. Services use it to
// check their connections.
func (s *Service) RootExists(ctx context.Context, rootID id.ID) (bool, error) {
	var ok bool
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		ok, err = s.repo.RootExists(ctx, rootID)
		return err
	})
	return ok, err
}
