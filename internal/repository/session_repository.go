package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/model"
)

// SessionRepo provides read and update access to the sessions table.
// Sessions are created by the external scheduling system; the engine
// only reads them and mutates capacity and visibility.  Every query
// filters by tenant_id so that a session belonging to another tenant
// is indistinguishable from one that does not exist.  All timestamp
// fields are stored in UTC.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, tenant_id, title, capacity, visible, starts_at, ends_at, version, created_at, updated_at`

func scanSession(row *sql.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Title, &s.Capacity, &s.Visible,
		&s.StartsAt, &s.EndsAt, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, classify(err)
	}
	return &s, nil
}

// GetSession returns the session identified by (tenantID, sessionID).
// Cross-tenant access yields booking.ErrNotFound.
func (r *SessionRepo) GetSession(ctx context.Context, tenantID, sessionID uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND tenant_id = ?`
	return scanSession(r.db.QueryRowContext(ctx, q, sessionID, tenantID))
}

// SetVisibility toggles the visible flag.  The version counter is
// bumped so readers outside the session lock can detect the change.
func (r *SessionRepo) SetVisibility(ctx context.Context, tenantID, sessionID uint64, visible bool) error {
	const q = `UPDATE sessions SET visible = ?, version = version + 1, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, visible, sessionID, tenantID)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		// Distinguish "already in that state" from "absent": MySQL
		// reports zero affected rows for a no-op update.
		const check = `SELECT 1 FROM sessions WHERE id = ? AND tenant_id = ?`
		var one int
		if err := r.db.QueryRowContext(ctx, check, sessionID, tenantID).Scan(&one); err != nil {
			return classify(err)
		}
	}
	return nil
}

// SetCapacity replaces the capacity and bumps the version counter.
func (r *SessionRepo) SetCapacity(ctx context.Context, tenantID, sessionID uint64, capacity uint32) error {
	const q = `UPDATE sessions SET capacity = ?, version = version + 1, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, capacity, sessionID, tenantID)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		const check = `SELECT 1 FROM sessions WHERE id = ? AND tenant_id = ?`
		var one int
		if err := r.db.QueryRowContext(ctx, check, sessionID, tenantID).Scan(&one); err != nil {
			return classify(err)
		}
	}
	return nil
}

// ListSessionsInRange returns the tenant's sessions whose start time
// falls within [from, to], ordered by start time then id for
// deterministic output.
func (r *SessionRepo) ListSessionsInRange(ctx context.Context, tenantID uint64, from, to time.Time) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
	           WHERE tenant_id = ? AND starts_at >= ? AND starts_at <= ?
	           ORDER BY starts_at, id`
	rows, err := r.db.QueryContext(ctx, q, tenantID, from.UTC(), to.UTC())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.Title, &s.Capacity, &s.Visible,
			&s.StartsAt, &s.EndsAt, &s.Version, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, classify(err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return sessions, nil
}

var _ booking.SessionStore = (*SessionRepo)(nil)
