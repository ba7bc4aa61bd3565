package versioned_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ptv/internal/core/id"
	"ptv/internal/domain/versioned/service"
	"ptv/internal/infrastructure/storage/postgres"
)

const serviceTable = "service"

// ServiceRepo implements service.Repository.
type ServiceRepo struct {
	*BaseVersionedRepo[*service.Service]
}

// NewServiceRepo creates a new service repository.
func NewServiceRepo(txm *postgres.TxManager) *ServiceRepo {
	return &ServiceRepo{
		BaseVersionedRepo: NewBaseVersionedRepo[*service.Service](
			txm,
			serviceTable,
			postgres.ExtractDBColumns[service.Service](),
			func() *service.Service { return &service.Service{} },
			"organization_id",
		),
	}
}

// ListByChannel implements service.Repository.
func (r *ServiceRepo) ListByChannel(ctx context.Context, channelRootID id.ID) ([]*service.Service, error) {
	q := r.LatestOnly(r.baseSelect()).
		Where(squirrel.Expr("? = ANY(t.channel_ids)", channelRootID)).
		Where(notStatusExpr("t.publishing_status_id", "Deleted")).
		OrderBy("t.modified DESC")
	return r.FindMany(ctx, q)
}
