package model

import "time"

// ParticipantState is the lifecycle state of a participant within a
// session.  Transitions are guarded: CheckedIn, NoShow and Cancelled
// are terminal and no transition ever leaves them.
type ParticipantState string

// Valid participant states.  The string values are stored verbatim in
// the participants.state column.
const (
	StateWaitlisted ParticipantState = "WAITLISTED"
	StateBooked     ParticipantState = "BOOKED"
	StateCheckedIn  ParticipantState = "CHECKED_IN"
	StateNoShow     ParticipantState = "NO_SHOW"
	StateCancelled  ParticipantState = "CANCELLED"
)

// Terminal reports whether no transition may leave the state.
func (s ParticipantState) Terminal() bool {
	switch s {
	case StateCheckedIn, StateNoShow, StateCancelled:
		return true
	}
	return false
}

// OnRoster reports whether the state occupies a confirmed seat.  The
// roster is the set of participants in one of these states, and its
// size never exceeds the session capacity.
func (s ParticipantState) OnRoster() bool {
	switch s {
	case StateBooked, StateCheckedIn, StateNoShow:
		return true
	}
	return false
}

// Active reports whether the participant still belongs to the session
// for duplicate-join purposes.  Every state except Cancelled counts:
// a waitlisted or no-show customer may not join the same session again.
func (s ParticipantState) Active() bool {
	return s != StateCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.  The allowed edges are:
//
//	Waitlisted -> Booked | Cancelled
//	Booked     -> CheckedIn | NoShow | Cancelled
//
// Everything else, including any edge out of a terminal state, is
// rejected.
func (s ParticipantState) CanTransitionTo(next ParticipantState) bool {
	switch s {
	case StateWaitlisted:
		return next == StateBooked || next == StateCancelled
	case StateBooked:
		return next == StateCheckedIn || next == StateNoShow || next == StateCancelled
	}
	return false
}

// Participant records a customer's membership in a session.  A
// participant is created on join and retained forever; cancellations
// and no-shows flip the state but never delete the row, so historical
// stats stay computable.
//
// Fields:
//  ID         – primary key identifier.
//  SessionID  – the session this participant belongs to.  A
//               participant never belongs to two sessions.
//  CustomerID – the customer behind the participant.
//  State      – current lifecycle state.
//  Position   – explicit 1-based rank within the waitlist; zero for
//               every non-waitlisted state.  Positions are renumbered
//               whenever an earlier entry leaves the waitlist so ranks
//               stay contiguous.
//  JoinedAt   – when the join request was accepted; defines FIFO
//               promotion order.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Participant struct {
	ID         uint64           // participants.id
	SessionID  uint64           // participants.session_id
	CustomerID uint64           // participants.customer_id
	State      ParticipantState // participants.state
	Position   uint32           // participants.position
	JoinedAt   time.Time        // participants.joined_at
	CreatedAt  time.Time        // participants.created_at
	UpdatedAt  time.Time        // participants.updated_at
}
