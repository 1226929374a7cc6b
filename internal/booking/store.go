package booking

import (
	"context"
	"time"

	"github.com/classpeak/group-booking/internal/model"
)

// SessionStore is the persistence port for sessions.  Implementations
// must scope every operation to the given tenant and return
// ErrNotFound for sessions that do not exist or belong to another
// tenant.  Mutations must bump the session's version counter.
type SessionStore interface {
	// GetSession returns the session identified by (tenantID, sessionID).
	GetSession(ctx context.Context, tenantID, sessionID uint64) (*model.Session, error)
	// SetVisibility toggles the session's listing visibility.
	SetVisibility(ctx context.Context, tenantID, sessionID uint64, visible bool) error
	// SetCapacity replaces the session's capacity.  Lowering capacity
	// never evicts roster participants; the roster shrinks by attrition.
	SetCapacity(ctx context.Context, tenantID, sessionID uint64, capacity uint32) error
	// ListSessionsInRange returns the tenant's sessions whose start
	// time falls within [from, to], ordered by start time.
	ListSessionsInRange(ctx context.Context, tenantID uint64, from, to time.Time) ([]model.Session, error)
}

// ParticipantStore is the persistence port for participants.  The
// engine serializes all writes for a session behind its lock, so
// implementations only need per-statement atomicity; the expected
// state guard on UpdateState makes each promotion step idempotent to
// retry detection.
type ParticipantStore interface {
	// GetParticipant returns a participant by session and id, or
	// ErrNotFound when absent or attached to a different session.
	GetParticipant(ctx context.Context, sessionID, participantID uint64) (*model.Participant, error)
	// GetParticipantByID resolves a participant by id alone, scoped to
	// the tenant that owns its session.
	GetParticipantByID(ctx context.Context, tenantID, participantID uint64) (*model.Participant, error)
	// ListBySession returns every participant of a session ordered by
	// join time, waitlist entries carrying their 1-based position.
	ListBySession(ctx context.Context, sessionID uint64) ([]model.Participant, error)
	// CreateBooked inserts p in the Booked state iff the roster is
	// still below capacity, populating p.ID.  When the conditional
	// insert finds the roster full it returns ErrConflict and writes
	// nothing.
	CreateBooked(ctx context.Context, p *model.Participant, capacity uint32) error
	// CreateWaitlisted inserts p in the Waitlisted state at the given
	// position, populating p.ID.
	CreateWaitlisted(ctx context.Context, p *model.Participant) error
	// UpdateState moves a participant from the expected state to the
	// next one, setting the waitlist position (zero for non-waitlisted
	// states).  When the row is no longer in the expected state it
	// returns ErrConflict and writes nothing.
	UpdateState(ctx context.Context, participantID uint64, from, to model.ParticipantState, position uint32) error
	// ShiftPositionsAfter decrements by one the position of every
	// waitlisted participant of the session ranked after the given
	// position, keeping ranks contiguous after a removal.
	ShiftPositionsAfter(ctx context.Context, sessionID uint64, position uint32) error
	// CountByState returns the number of participants per state for a
	// session.  Missing states count as zero.
	CountByState(ctx context.Context, sessionID uint64) (map[model.ParticipantState]int, error)
}

// Store bundles both ports.  The MySQL repositories satisfy it in
// production; tests use an in-memory implementation.
type Store interface {
	SessionStore
	ParticipantStore
}
