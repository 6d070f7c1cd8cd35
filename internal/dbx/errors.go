package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapError classifies a database/sql error into the common sentinels:
// no rows is ErrNotFound, a unique violation is ErrAlreadyExists and anything
// else means the store could not serve the request (ErrStoreUnavailable).
// The original error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", common.ErrNotFound, pgErr.Detail)
		case pgerrcode.InvalidTextRepresentation:
			// a malformed uuid can never match a row
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: postgres error [%s]: %w", common.ErrStoreUnavailable, pgErr.Code, err)
	}

	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
