package generaldescription

import (
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/validation"
)

// Service provides business logic for general descriptions.
type Service struct {
	*domain.VersionedService[*GeneralDescription]
}

// NewService creates a new general description service.
func NewService(base domain.VersionedServiceConfig[*GeneralDescription], repo Repository) *Service {
	base.Repo = repo
	base.EntityName = "general_description"
	base.RuleKind = validation.KindGeneralDescription
	if base.Clone == nil {
		base.Clone = NewCloner(cloning.DefaultAggregateCloner()).Clone
	}
	return &Service{VersionedService: domain.NewVersionedService(base)}
}
