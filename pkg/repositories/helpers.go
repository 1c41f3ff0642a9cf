// Package repositories provides pgx-based data access for goal-engine.
// All SQL lives here. Repositories read the owner-scoped connection from
// context (database.GetOwnerScope); services open transactions on that
// connection, so repository calls made inside a service transaction run
// within it.
package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
// Uniqueness constraints are the final arbiter for key/level/answer
// collisions; application pre-checks are fast paths only.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
