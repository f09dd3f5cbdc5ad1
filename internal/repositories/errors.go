package repositories

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/database"
)

// PostgreSQL error classes used for constraint handling.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

// wrapStoreError classifies driver errors: an unreachable or slow store
// becomes an UnavailableError so the boundary can degrade instead of crash.
func wrapStoreError(op string, err error) error {
	if database.IsUnavailable(err) {
		return &models.UnavailableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %v", op, err)
}
