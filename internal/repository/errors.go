// Package repository implements the engine's persistence ports on
// MySQL.  The repositories return the booking package's sentinel
// errors directly so callers can branch with errors.Is without
// knowing they are backed by SQL: absent rows become ErrNotFound,
// lost conditional writes become ErrConflict, and connection or
// deadline failures become ErrUnavailable (safe to retry, nothing
// was written).
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/classpeak/group-booking/internal/booking"
)

// classify maps low-level database errors onto the engine taxonomy.
// Absent rows become ErrNotFound; everything else (deadlines, broken
// connections, driver faults) is wrapped into ErrUnavailable so that
// internal driver messages never reach a client verbatim.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	return fmt.Errorf("%w: %v", booking.ErrUnavailable, err)
}
