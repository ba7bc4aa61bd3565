package service

import (
	"context"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/core/tx"
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/validation"
)

// RootChecker reports whether a unific root of another kind exists.
type RootChecker interface {
	RootExists(ctx context.Context, rootID id.ID) (bool, error)
}

// Config wires the service manager.
type Config struct {
	Base     domain.VersionedServiceConfig[*Service]
	Repo     Repository
	Channels RootChecker // Optional
}

// Manager provides business logic for services.
type Manager struct {
	*domain.VersionedService[*Service]
	repo      Repository
	txManager tx.Manager
	channels  RootChecker
}

// NewManager creates a new service manager.
func NewManager(cfg Config) *Manager {
	base := cfg.Base
	base.Repo = cfg.Repo
	base.EntityName = "service"
	base.RuleKind = validation.KindService
	if base.Clone == nil {
		base.Clone = NewCloner(cloning.DefaultAggregateCloner()).Clone
	}

	m := &Manager{
		VersionedService: domain.NewVersionedService(base),
		repo:             cfg.Repo,
		txManager:        base.TxManager,
		channels:         cfg.Channels,
	}
	m.Hooks().OnBeforeCreate(m.checkChannels)
	m.Hooks().OnBeforeSave(m.checkChannels)
	m.Hooks().OnBeforePublish(m.checkChannels)
	return m
}

func (m *Manager) checkChannels(ctx context.Context, s *Service) error {
	if m.channels == nil {
		return nil
	}
	for _, root := range s.ChannelIDs {
		ok, err := m.channels.RootExists(ctx, root)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewValidation("connected channel does not exist").WithDetail("channelId", root.String())
		}
	}
	return nil
}

// ListByChannel returns the services connected to a channel.
func (m *Manager) ListByChannel(ctx context.Context, channelRootID id.ID) ([]*Service, error) {
	var out []*Service
	err := m.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = m.repo.ListByChannel(ctx, channelRootID)
		return err
	})
	return out, err
}
