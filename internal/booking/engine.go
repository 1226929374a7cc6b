package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/classpeak/group-booking/internal/model"
)

// Engine is the only entry point allowed to mutate roster and
// waitlist membership.  Every mutating operation acquires the
// session's exclusive section before touching the store, so the
// read-modify-write sequences of concurrent requests never
// interleave within one session.  Reads (availability, waitlist,
// stats) take snapshots outside the locks and rely on the session
// version counter to signal staleness.
type Engine struct {
	store Store
	locks *sessionLocks
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{store: store, locks: newSessionLocks()}
}

// JoinResult reports the outcome of a join: either a confirmed seat
// or a waitlist entry with its 1-based position.
type JoinResult struct {
	Participant *model.Participant
	Waitlisted  bool
	Position    uint32
}

// CancelResult reports a cancellation along with any waitlist
// entries promoted into the freed seat.
type CancelResult struct {
	Cancelled *model.Participant
	Promoted  []model.Participant
}

// CapacityResult reports a capacity change along with any waitlist
// entries promoted when the capacity was raised.
type CapacityResult struct {
	Session  *model.Session
	Promoted []model.Participant
}

// Availability is a read snapshot of a session's occupancy.  Booked
// counts every occupied seat (booked, checked in and no-show), so
// capacity minus booked is the number of open seats.
type Availability struct {
	SessionID  uint64 `json:"session_id"`
	Capacity   uint32 `json:"capacity"`
	Booked     int    `json:"booked"`
	Waitlisted int    `json:"waitlisted"`
	Version    uint32 `json:"version"`
}

// GetSession returns the tenant's session or ErrNotFound.
func (e *Engine) GetSession(ctx context.Context, tenantID, sessionID uint64) (*model.Session, error) {
	return e.store.GetSession(ctx, tenantID, sessionID)
}

// GetParticipant returns a participant of the tenant's session, or
// ErrNotFound when the session or participant is absent.
func (e *Engine) GetParticipant(ctx context.Context, tenantID, sessionID, participantID uint64) (*model.Participant, error) {
	if _, err := e.store.GetSession(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	return e.store.GetParticipant(ctx, sessionID, participantID)
}

// SetVisibility toggles whether the session appears in availability
// listings.  Hidden sessions remain fully managed by the engine.
func (e *Engine) SetVisibility(ctx context.Context, tenantID, sessionID uint64, visible bool) error {
	lock := e.locks.acquire(sessionID)
	defer e.locks.release(sessionID, lock)

	return e.store.SetVisibility(ctx, tenantID, sessionID, visible)
}

// SetCapacity replaces the session capacity.  Raising it immediately
// backfills freed seats from the waitlist in FIFO order; lowering it
// never evicts roster participants.
func (e *Engine) SetCapacity(ctx context.Context, tenantID, sessionID uint64, capacity uint32) (*CapacityResult, error) {
	lock := e.locks.acquire(sessionID)
	defer e.locks.release(sessionID, lock)

	if err := e.store.SetCapacity(ctx, tenantID, sessionID, capacity); err != nil {
		return nil, err
	}
	sess, err := e.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	promoted, err := e.fillFromWaitlist(ctx, sess)
	// A halted promotion chain still reports what committed.
	return &CapacityResult{Session: sess, Promoted: promoted}, err
}

// GetAvailability returns an occupancy snapshot.  Hidden sessions are
// reported as ErrNotFound unless includeHidden is set (staff callers).
func (e *Engine) GetAvailability(ctx context.Context, tenantID, sessionID uint64, includeHidden bool) (*Availability, error) {
	sess, err := e.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Visible && !includeHidden {
		return nil, ErrNotFound
	}
	counts, err := e.store.CountByState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Availability{
		SessionID:  sess.ID,
		Capacity:   sess.Capacity,
		Booked:     counts[model.StateBooked] + counts[model.StateCheckedIn] + counts[model.StateNoShow],
		Waitlisted: counts[model.StateWaitlisted],
		Version:    sess.Version,
	}, nil
}

// GetWaitlist returns the session's waitlist ordered by position.
func (e *Engine) GetWaitlist(ctx context.Context, tenantID, sessionID uint64) ([]model.Participant, error) {
	if _, err := e.store.GetSession(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	parts, err := e.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	waitlist := make([]model.Participant, 0)
	for _, p := range parts {
		if p.State == model.StateWaitlisted {
			waitlist = append(waitlist, p)
		}
	}
	sort.Slice(waitlist, func(i, j int) bool { return waitlist[i].Position < waitlist[j].Position })
	return waitlist, nil
}

// Join books the customer into the session when a seat is open and
// appends them to the waitlist otherwise.  A customer already active
// in the session (any non-cancelled state) is rejected with
// ErrDuplicateParticipant.  The store's conditional booked insert
// backs the capacity bound even if the store is shared with another
// writer: losing that race degrades the join to a waitlist entry
// instead of failing.
func (e *Engine) Join(ctx context.Context, tenantID, sessionID, customerID uint64) (*JoinResult, error) {
	lock := e.locks.acquire(sessionID)
	defer e.locks.release(sessionID, lock)

	sess, err := e.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	parts, err := e.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	roster, waitlisted := 0, 0
	for _, p := range parts {
		if p.CustomerID == customerID && p.State.Active() {
			return nil, ErrDuplicateParticipant
		}
		if p.State.OnRoster() {
			roster++
		}
		if p.State == model.StateWaitlisted {
			waitlisted++
		}
	}
	now := time.Now().UTC()
	if roster < int(sess.Capacity) {
		p := &model.Participant{
			SessionID:  sessionID,
			CustomerID: customerID,
			State:      model.StateBooked,
			JoinedAt:   now,
		}
		err := e.store.CreateBooked(ctx, p, sess.Capacity)
		if err == nil {
			return &JoinResult{Participant: p}, nil
		}
		if err != ErrConflict {
			return nil, fmt.Errorf("create booked participant: %w", err)
		}
		// Lost the seat to a writer outside this process; fall through
		// to the waitlist rather than fail the join.
	}
	p := &model.Participant{
		SessionID:  sessionID,
		CustomerID: customerID,
		State:      model.StateWaitlisted,
		Position:   uint32(waitlisted + 1),
		JoinedAt:   now,
	}
	if err := e.store.CreateWaitlisted(ctx, p); err != nil {
		return nil, fmt.Errorf("create waitlisted participant: %w", err)
	}
	return &JoinResult{Participant: p, Waitlisted: true, Position: p.Position}, nil
}

// Cancel transitions a participant to Cancelled.  Cancelling a booked
// participant frees a seat and runs FIFO promotion to exhaustion;
// cancelling a waitlisted participant renumbers the entries behind it
// so ranks stay contiguous.  Cancelling from a terminal state is
// rejected with ErrInvalidTransition.
func (e *Engine) Cancel(ctx context.Context, tenantID, sessionID, participantID uint64) (*CancelResult, error) {
	lock := e.locks.acquire(sessionID)
	defer e.locks.release(sessionID, lock)

	sess, err := e.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := e.store.GetParticipant(ctx, sessionID, participantID)
	if err != nil {
		return nil, err
	}
	if !p.State.CanTransitionTo(model.StateCancelled) {
		return nil, ErrInvalidTransition
	}
	prev := p.State
	if err := e.store.UpdateState(ctx, p.ID, prev, model.StateCancelled, 0); err != nil {
		return nil, fmt.Errorf("cancel participant %d: %w", p.ID, err)
	}
	p.State = model.StateCancelled
	res := &CancelResult{Cancelled: p}
	switch prev {
	case model.StateWaitlisted:
		if err := e.store.ShiftPositionsAfter(ctx, sessionID, p.Position); err != nil {
			return nil, fmt.Errorf("renumber waitlist: %w", err)
		}
		p.Position = 0
	case model.StateBooked:
		promoted, err := e.fillFromWaitlist(ctx, sess)
		res.Promoted = promoted
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// CheckIn marks a booked participant as attended.  Calling it again
// on an already checked-in participant is an idempotent no-op that
// returns the current state; any other state is rejected.
func (e *Engine) CheckIn(ctx context.Context, tenantID, participantID uint64) (*model.Participant, error) {
	p, err := e.store.GetParticipantByID(ctx, tenantID, participantID)
	if err != nil {
		return nil, err
	}
	lock := e.locks.acquire(p.SessionID)
	defer e.locks.release(p.SessionID, lock)

	// Re-read inside the exclusive section: the state may have moved
	// between the lookup and the lock grant.
	p, err = e.store.GetParticipant(ctx, p.SessionID, participantID)
	if err != nil {
		return nil, err
	}
	switch p.State {
	case model.StateCheckedIn:
		return p, nil
	case model.StateBooked:
		if err := e.store.UpdateState(ctx, p.ID, model.StateBooked, model.StateCheckedIn, 0); err != nil {
			return nil, fmt.Errorf("check in participant %d: %w", p.ID, err)
		}
		p.State = model.StateCheckedIn
		return p, nil
	default:
		return nil, ErrInvalidTransition
	}
}

// CheckInAll transitions every booked participant of the session to
// CheckedIn and returns the newly transitioned entries.  Already
// checked-in participants are untouched, so repeated calls are
// idempotent.  Each transition commits independently; on a store
// failure the entries already checked in are kept and returned
// alongside the error.
func (e *Engine) CheckInAll(ctx context.Context, tenantID, sessionID uint64) ([]model.Participant, error) {
	lock := e.locks.acquire(sessionID)
	defer e.locks.release(sessionID, lock)

	if _, err := e.store.GetSession(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	parts, err := e.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	checked := make([]model.Participant, 0)
	for _, p := range parts {
		if p.State != model.StateBooked {
			continue
		}
		if err := e.store.UpdateState(ctx, p.ID, model.StateBooked, model.StateCheckedIn, 0); err != nil {
			return checked, fmt.Errorf("check in participant %d: %w", p.ID, err)
		}
		p.State = model.StateCheckedIn
		checked = append(checked, p)
	}
	return checked, nil
}

// MarkNoShow marks a booked participant as having failed to attend.
// Unlike CheckIn it is not idempotent: NoShow is terminal and a
// second call, or a call against a checked-in participant, is
// rejected with ErrInvalidTransition.
func (e *Engine) MarkNoShow(ctx context.Context, tenantID, participantID uint64) (*model.Participant, error) {
	p, err := e.store.GetParticipantByID(ctx, tenantID, participantID)
	if err != nil {
		return nil, err
	}
	lock := e.locks.acquire(p.SessionID)
	defer e.locks.release(p.SessionID, lock)

	p, err = e.store.GetParticipant(ctx, p.SessionID, participantID)
	if err != nil {
		return nil, err
	}
	if p.State != model.StateBooked {
		return nil, ErrInvalidTransition
	}
	if err := e.store.UpdateState(ctx, p.ID, model.StateBooked, model.StateNoShow, 0); err != nil {
		return nil, fmt.Errorf("mark no-show participant %d: %w", p.ID, err)
	}
	p.State = model.StateNoShow
	return p, nil
}
