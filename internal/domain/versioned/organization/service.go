package organization

import (
	"context"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/domain"
	"ptv/internal/domain/cloning"
	"ptv/internal/domain/validation"
	"ptv/pkg/logger"
)

// Hierarchy answers ancestry questions about published organizations.
type Hierarchy interface {
	IsDescendant(ancestorID, orgID id.ID) bool
}

// Service provides business logic for organizations.
type Service struct {
	*domain.VersionedService[*Organization]
	repo Repository
	tree Hierarchy
}

// NewService creates a new organization service. onChanged runs after a
// committed publish or archive so hierarchy caches can reload.
func NewService(base domain.VersionedServiceConfig[*Organization], repo Repository, tree Hierarchy, onChanged func(ctx context.Context)) *Service {
	base.Repo = repo
	base.EntityName = "organization"
	base.RuleKind = validation.KindOrganization
	if base.Clone == nil {
		base.Clone = NewCloner(cloning.DefaultAggregateCloner()).Clone
	}

	svc := &Service{
		VersionedService: domain.NewVersionedService(base),
		repo:             repo,
		tree:             tree,
	}
	svc.Hooks().OnBeforeCreate(svc.checkBusinessCode)
	svc.Hooks().OnBeforeSave(svc.checkBusinessCode)
	svc.Hooks().OnBeforeSave(svc.checkParent)
	if onChanged != nil {
		notify := func(ctx context.Context, o *Organization) error {
			logger.Debug(ctx, "organization hierarchy changed", "root", o.UnificRootID)
			onChanged(ctx)
			return nil
		}
		svc.Hooks().OnAfterPublish(notify)
		svc.Hooks().On(domain.AfterArchive, notify)
	}
	return svc
}

// checkBusinessCode rejects a business code already used by another organization.
func (s *Service) checkBusinessCode(ctx context.Context, o *Organization) error {
	code := strings.TrimSpace(o.BusinessCode)
	if code == "" {
		return nil
	}
	taken, err := s.repo.BusinessCodeTaken(ctx, code, o.UnificRootID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.NewDuplicityCheck("organization", "businessCode", code)
	}
	return nil
}

// checkParent rejects a parent that is the organization itself or one of its
// sub-organizations.
func (s *Service) checkParent(_ context.Context, o *Organization) error {
	if o.ParentID == nil || id.IsNil(o.UnificRootID) {
		return nil
	}
	if *o.ParentID == o.UnificRootID {
		return apperror.NewValidation("organization cannot be its own parent")
	}
	if s.tree != nil && s.tree.IsDescendant(o.UnificRootID, *o.ParentID) {
		return apperror.NewValidation("parent cannot be a sub-organization").
			WithDetail("parentId", o.ParentID.String())
	}
	return nil
}
