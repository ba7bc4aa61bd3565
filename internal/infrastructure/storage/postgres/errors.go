package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ptv/internal/core/apperror"
)

// MapError converts driver errors into application errors: exhausted
// connections, unique violations and missing rows get their own codes;
// everything else is returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound("row", nil).WithCause(err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.TooManyConnections:
		return apperror.NewTooManyConnections(err)
	case pgerrcode.UniqueViolation:
		return apperror.NewDuplicityCheck(pgErr.TableName, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return apperror.NewConflict("concurrent update, retry the request").WithCause(err)
	case pgerrcode.ForeignKeyViolation:
		return apperror.NewValidation("referenced row does not exist").
			WithDetail("constraint", pgErr.ConstraintName).WithCause(err)
	}
	return err
}
