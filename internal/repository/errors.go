package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/eaglebank/eagle-bank/internal/apperr"
)

const (
	pqUniqueViolation = "23505"

	// Class 08 groups PostgreSQL connection exceptions.
	pqConnectionClass = "08"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// storeError classifies a driver failure: connection-class errors surface as
// Unavailable so the boundary answers 503, everything else stays a wrapped
// internal error.
func storeError(action string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperr.Unavailable("database unavailable", err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == pqConnectionClass {
		return apperr.Unavailable("database unavailable", err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
