package versioned_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/core/id"
	"ptv/internal/domain/versioned/organization"
	"ptv/internal/infrastructure/cache"
	"ptv/internal/infrastructure/storage/postgres"
)

const organizationTable = "organization"

// OrganizationRepo implements organization.Repository and feeds the
// organization tree cache.
type OrganizationRepo struct {
	*BaseVersionedRepo[*organization.Organization]
}

// NewOrganizationRepo creates a new organization repository.
func NewOrganizationRepo(txm *postgres.TxManager) *OrganizationRepo {
	return &OrganizationRepo{
		BaseVersionedRepo: NewBaseVersionedRepo[*organization.Organization](
			txm,
			organizationTable,
			postgres.ExtractDBColumns[organization.Organization](),
			func() *organization.Organization { return &organization.Organization{} },
			"unific_root_id",
		),
	}
}

// BusinessCodeTaken implements organization.Repository.
func (r *OrganizationRepo) BusinessCodeTaken(ctx context.Context, code string, exceptRootID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+organizationTable+" t WHERE t.business_code = ? AND t.unific_root_id <> ? AND "+
				fmt.Sprintf("NOT "+statusIs, "t.publishing_status_id")+")",
			code, exceptRootID, "Deleted",
		)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var taken bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("business code check: %w", postgres.MapError(err))
	}
	return taken, nil
}

// LoadOrganizationTree returns the latest live version of every organization
// root with its first name.
func (r *OrganizationRepo) LoadOrganizationTree(ctx context.Context) ([]cache.OrganizationNode, error) {
	q := r.LatestOnly(
		r.Builder().
			Select(
				"t.unific_root_id",
				"t.parent_id",
				"COALESCE((SELECT nm.name FROM "+organizationTable+"_name nm WHERE nm.owner_id = t.id ORDER BY nm.localization_id LIMIT 1), '') AS name",
			).
			From(organizationTable + " AS t"),
	).Where(notStatusExpr("t.publishing_status_id", "Deleted"))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var nodes []cache.OrganizationNode
	if err := pgxscan.Select(ctx, r.querier(ctx), &nodes, sql, args...); err != nil {
		return nil, fmt.Errorf("load organization tree: %w", postgres.MapError(err))
	}
	return nodes, nil
}
