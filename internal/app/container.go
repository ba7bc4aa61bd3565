// Package app assembles the registry: caches, repositories and domain services
// on top of one connection pool. The API server and the worker share it.
package app

import (
	"context"
	"fmt"

	"ptv/internal/core/security"
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/country"
	"ptv/internal/domain/finto"
	"ptv/internal/domain/translation"
	"ptv/internal/domain/validation"
	"ptv/internal/domain/versioned/channel"
	"ptv/internal/domain/versioned/generaldescription"
	"ptv/internal/domain/versioned/organization"
	"ptv/internal/domain/versioned/service"
	"ptv/internal/domain/versioning"
	"ptv/internal/infrastructure/cache"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/internal/infrastructure/storage/postgres/reference_repo"
	"ptv/internal/infrastructure/storage/postgres/versioned_repo"
	"ptv/pkg/logger"
)

// Container holds the wired registry.
type Container struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	Types         *cache.TypesCache
	Organizations *cache.OrganizationTreeCache
	FintoTrees    *cache.FintoTreeCache
	Listener      *cache.Listener

	Services            *service.Manager
	Channels            *channel.Service
	OrganizationService *organization.Service
	GeneralDescriptions *generaldescription.Service
	Finto               *finto.Service
	Countries           *country.Service
}

// New wires every component on pool. Caches are empty until Start.
func New(pool *postgres.Pool) (*Container, error) {
	txm := postgres.NewTxManager(pool)

	typeRepo := reference_repo.NewTypeRepo(txm)
	orgRepo := versioned_repo.NewOrganizationRepo(txm)
	fintoRepo := reference_repo.NewFintoRepo(txm)
	countryRepo := reference_repo.NewCountryRepo(txm)

	c := &Container{
		Pool:          pool,
		TxManager:     txm,
		Types:         cache.NewTypesCache(typeRepo),
		Organizations: cache.NewOrganizationTreeCache(orgRepo),
		FintoTrees:    cache.NewFintoTreeCache(fintoRepo, cloning.DefaultTreeItemCloner()),
		Listener:      cache.NewListener(pool.Unwrap()),
	}
	c.Types.Listen(c.Listener)
	c.Organizations.Listen(c.Listener)
	c.FintoTrees.Listen(c.Listener)

	rules, err := validation.NewEngine(validation.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("compile publishing rules: %w", err)
	}
	history, err := postgres.NewHistoryRecorder(txm)
	if err != nil {
		return nil, err
	}
	versions := versioning.NewManager(c.Types)
	policy := security.NewOrganizationPolicy(c.Organizations)

	c.Channels = channel.NewService(domain.VersionedServiceConfig[*channel.Channel]{
		TxManager:  txm,
		Types:      c.Types,
		Versioning: versions,
		Rules:      rules,
		Policy:     policy,
		History:    history,
	}, versioned_repo.NewChannelRepo(txm))

	c.Services = service.NewManager(service.Config{
		Base: domain.VersionedServiceConfig[*service.Service]{
			TxManager:  txm,
			Types:      c.Types,
			Versioning: versions,
			Rules:      rules,
			Policy:     policy,
			History:    history,
		},
		Repo:     versioned_repo.NewServiceRepo(txm),
		Channels: c.Channels,
	})

	c.OrganizationService = organization.NewService(domain.VersionedServiceConfig[*organization.Organization]{
		TxManager:  txm,
		Types:      c.Types,
		Versioning: versions,
		Rules:      rules,
		Policy:     policy,
		History:    history,
	}, orgRepo, c.Organizations, c.Organizations.Invalidate)

	c.GeneralDescriptions = generaldescription.NewService(domain.VersionedServiceConfig[*generaldescription.GeneralDescription]{
		TxManager:  txm,
		Types:      c.Types,
		Versioning: versions,
		Rules:      rules,
		Policy:     policy,
		History:    history,
	}, versioned_repo.NewGeneralDescriptionRepo(txm))

	c.Finto = finto.NewService(finto.ServiceConfig{
		Repo:      fintoRepo,
		TxManager: txm,
		Terms:     translation.NewFintoTranslator(fintoRepo, c.Types),
		Trees: func(kind finto.TreeKind) finto.ItemTranslator {
			return translation.NewTreeItemTranslator(kind, fintoRepo, c.Types)
		},
		OnImported: func(ctx context.Context, kind finto.TreeKind) {
			if kind != finto.OntologyKind {
				c.FintoTrees.Invalidate(ctx, kind)
			}
		},
		Cache: c.FintoTrees,
	})

	c.Countries = country.NewService(countryRepo, translation.NewCountryTranslator(countryRepo, c.Types), txm)

	return c, nil
}

// Start loads the caches and starts listening for change notifications.
func (c *Container) Start(ctx context.Context) error {
	if err := c.Types.Reload(ctx); err != nil {
		return err
	}
	if err := c.Organizations.Reload(ctx); err != nil {
		return err
	}
	if err := c.Listener.Start(ctx); err != nil {
		return fmt.Errorf("start cache listener: %w", err)
	}
	logger.Info(ctx, "registry caches ready")
	return nil
}

// Stop stops the notification listener.
func (c *Container) Stop() {
	c.Listener.Stop()
}
