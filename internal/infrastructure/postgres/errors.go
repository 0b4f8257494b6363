package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// violatedColumn reports whether a unique violation involves the named
// column, based on the constraint name Postgres reports.
func violatedColumn(err error, column string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return strings.Contains(pgErr.ConstraintName, column)
}
