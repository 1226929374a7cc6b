package repository

import (
	"context"
	"database/sql"

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/model"
)

// ParticipantRepo provides data access to the participants table.
// Rows are never deleted: cancellations and no-shows flip the state
// column so historical stats remain computable.  The engine holds the
// session's exclusive section around every write, so the repository
// only guarantees per-statement atomicity; the conditional insert in
// CreateBooked additionally enforces the capacity bound at the store
// level for writers outside this process.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo returns a ParticipantRepo bound to the database.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

const participantColumns = `id, session_id, customer_id, state, position, joined_at, created_at, updated_at`

func scanParticipant(row *sql.Row) (*model.Participant, error) {
	var p model.Participant
	err := row.Scan(
		&p.ID, &p.SessionID, &p.CustomerID, &p.State, &p.Position,
		&p.JoinedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// GetParticipant returns a participant by session and id.  A
// participant attached to a different session is reported as absent.
func (r *ParticipantRepo) GetParticipant(ctx context.Context, sessionID, participantID uint64) (*model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE id = ? AND session_id = ?`
	return scanParticipant(r.db.QueryRowContext(ctx, q, participantID, sessionID))
}

// GetParticipantByID resolves a participant by id alone, joining
// through sessions to enforce the tenant boundary.
func (r *ParticipantRepo) GetParticipantByID(ctx context.Context, tenantID, participantID uint64) (*model.Participant, error) {
	const q = `SELECT p.id, p.session_id, p.customer_id, p.state, p.position, p.joined_at, p.created_at, p.updated_at
	           FROM participants p
	           JOIN sessions s ON s.id = p.session_id
	           WHERE p.id = ? AND s.tenant_id = ?`
	return scanParticipant(r.db.QueryRowContext(ctx, q, participantID, tenantID))
}

// ListBySession returns every participant of a session ordered by
// join time then id, which is also FIFO order for the waitlist.
func (r *ParticipantRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE session_id = ? ORDER BY joined_at, id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	parts := make([]model.Participant, 0)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(
			&p.ID, &p.SessionID, &p.CustomerID, &p.State, &p.Position,
			&p.JoinedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, classify(err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return parts, nil
}

// CreateBooked inserts a participant in the Booked state iff the
// roster (Booked, CheckedIn, NoShow) is still below capacity.  The
// INSERT..SELECT makes the occupancy check and the insert a single
// atomic statement, so even a writer that bypasses the engine's
// session lock cannot oversell a seat.  When the guard fails nothing
// is written and booking.ErrConflict is returned.
func (r *ParticipantRepo) CreateBooked(ctx context.Context, p *model.Participant, capacity uint32) error {
	const q = `INSERT INTO participants (session_id, customer_id, state, position, joined_at)
	           SELECT ?, ?, ?, 0, ?
	           FROM dual
	           WHERE (SELECT COUNT(*) FROM participants
	                  WHERE session_id = ? AND state IN (?, ?, ?)) < ?`
	res, err := r.db.ExecContext(ctx, q,
		p.SessionID, p.CustomerID, model.StateBooked, p.JoinedAt,
		p.SessionID, model.StateBooked, model.StateCheckedIn, model.StateNoShow, capacity,
	)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return booking.ErrConflict
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	p.ID = uint64(id)
	p.State = model.StateBooked
	return nil
}

// CreateWaitlisted inserts a participant in the Waitlisted state at
// the position computed by the engine.
func (r *ParticipantRepo) CreateWaitlisted(ctx context.Context, p *model.Participant) error {
	const q = `INSERT INTO participants (session_id, customer_id, state, position, joined_at)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.SessionID, p.CustomerID, model.StateWaitlisted, p.Position, p.JoinedAt)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	p.ID = uint64(id)
	p.State = model.StateWaitlisted
	return nil
}

// UpdateState moves a participant from the expected state to the next
// one.  The WHERE state = ? guard makes each transition idempotent to
// retry detection: a retried promotion that already committed matches
// zero rows and surfaces booking.ErrConflict instead of applying
// twice.
func (r *ParticipantRepo) UpdateState(ctx context.Context, participantID uint64, from, to model.ParticipantState, position uint32) error {
	const q = `UPDATE participants SET state = ?, position = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND state = ?`
	res, err := r.db.ExecContext(ctx, q, to, position, participantID, from)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return booking.ErrConflict
	}
	return nil
}

// ShiftPositionsAfter closes the gap left by a removed waitlist entry
// by decrementing every later position.
func (r *ParticipantRepo) ShiftPositionsAfter(ctx context.Context, sessionID uint64, position uint32) error {
	const q = `UPDATE participants SET position = position - 1, updated_at = UTC_TIMESTAMP()
	           WHERE session_id = ? AND state = ? AND position > ?`
	_, err := r.db.ExecContext(ctx, q, sessionID, model.StateWaitlisted, position)
	return classify(err)
}

// CountByState returns the number of participants per state for a
// session in a single grouped query.
func (r *ParticipantRepo) CountByState(ctx context.Context, sessionID uint64) (map[model.ParticipantState]int, error) {
	const q = `SELECT state, COUNT(*) FROM participants WHERE session_id = ? GROUP BY state`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	counts := make(map[model.ParticipantState]int)
	for rows.Next() {
		var state model.ParticipantState
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, classify(err)
		}
		counts[state] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return counts, nil
}

var _ booking.ParticipantStore = (*ParticipantRepo)(nil)
