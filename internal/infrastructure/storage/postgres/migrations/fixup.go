package migrations

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ptv/internal/core/entity"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/pkg/logger"
)

// DescriptionTables hold localized descriptions stored as rich text.
var DescriptionTables = []string{
	"service_description",
	"service_channel_description",
	"organization_description",
	"general_description_description",
}

type descriptionRow struct {
	OwnerID        string `db:"owner_id"`
	LocalizationID string `db:"localization_id"`
	TypeID         string `db:"type_id"`
	Description    string `db:"description"`
}

// FixupDescriptions rewrites plain text descriptions into the rich text
// envelope, one unit of work per table. It returns the number of rows changed.
func FixupDescriptions(ctx context.Context, txm *postgres.TxManager) (int, error) {
	total := 0
	for _, table := range DescriptionTables {
		var changed int
		err := txm.ExecuteWriter(ctx, func(ctx context.Context) error {
			var err error
			changed, err = fixupTable(ctx, txm.GetQuerier(ctx), table)
			return err
		})
		if err != nil {
			return total, fmt.Errorf("fixup %s: %w", table, err)
		}
		if changed > 0 {
			logger.Info(ctx, "descriptions wrapped", "table", table, "rows", changed)
		}
		total += changed
	}
	return total, nil
}

func fixupTable(ctx context.Context, q postgres.Querier, table string) (int, error) {
	sql, args, err := postgres.Builder().
		Select("owner_id::text", "localization_id::text", "type_id::text", "description").
		From(table).
		Where("ltrim(description) NOT LIKE '{%'").
		Where(squirrel.NotEq{"description": ""}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var rows []descriptionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return 0, postgres.MapError(err)
	}

	changed := 0
	for _, row := range rows {
		wrapped, ok := entity.WrapPlainText(row.Description)
		if !ok {
			continue
		}
		sql, args, err := postgres.Builder().
			Update(table).
			Set("description", string(wrapped)).
			Where(squirrel.Eq{
				"owner_id":        row.OwnerID,
				"localization_id": row.LocalizationID,
				"type_id":         row.TypeID,
			}).
			ToSql()
		if err != nil {
			return changed, err
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return changed, postgres.MapError(err)
		}
		changed++
	}
	return changed, nil
}
