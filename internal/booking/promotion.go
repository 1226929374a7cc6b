package booking

import (
	"context"
	"fmt"
	"sort"

	"github.com/classpeak/group-booking/internal/model"
)

// Promote books a waitlisted participant into a free seat.  With a
// zero participantID the head of the waitlist is promoted, preserving
// FIFO order.  A non-zero participantID is an explicit operator
// override: the entry is pulled from wherever it sits in the waitlist
// and booked directly, and no further entries are promoted even if
// more seats remain open.  When the roster is already at capacity the
// call is a no-op returning ErrCapacityFull.
func (e *Engine) Promote(ctx context.Context, tenantID, sessionID, participantID uint64) (*model.Participant, error) {
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
	roster := 0
	var target *model.Participant
	var head *model.Participant
	for i := range parts {
		p := &parts[i]
		if p.State.OnRoster() {
			roster++
		}
		if p.State != model.StateWaitlisted {
			continue
		}
		if head == nil || p.Position < head.Position {
			head = p
		}
		if p.ID == participantID {
			target = p
		}
	}
	if roster >= int(sess.Capacity) {
		return nil, ErrCapacityFull
	}
	if participantID == 0 {
		target = head
	} else if target == nil {
		// Either absent from the session or not waitlisted; look the id
		// up to tell the two apart.
		p, err := e.store.GetParticipant(ctx, sessionID, participantID)
		if err != nil {
			return nil, err
		}
		if p.State != model.StateWaitlisted {
			return nil, ErrInvalidTransition
		}
		target = p
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if err := e.promoteOne(ctx, sessionID, target); err != nil {
		return nil, err
	}
	return target, nil
}

// fillFromWaitlist runs FIFO auto-promotion to exhaustion: while the
// roster is below capacity and the waitlist is non-empty, the head
// entry is booked and the remaining positions renumbered.  Each step
// commits independently; on a store failure the loop halts and the
// already-promoted entries are kept, which is why the returned slice
// is meaningful even alongside a non-nil error.
func (e *Engine) fillFromWaitlist(ctx context.Context, sess *model.Session) ([]model.Participant, error) {
	parts, err := e.store.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	roster := 0
	waitlist := make([]*model.Participant, 0)
	for i := range parts {
		p := &parts[i]
		if p.State.OnRoster() {
			roster++
		}
		if p.State == model.StateWaitlisted {
			waitlist = append(waitlist, p)
		}
	}
	sort.Slice(waitlist, func(i, j int) bool { return waitlist[i].Position < waitlist[j].Position })

	promoted := make([]model.Participant, 0)
	for roster < int(sess.Capacity) && len(waitlist) > 0 {
		headEntry := waitlist[0]
		waitlist = waitlist[1:]
		if err := e.promoteOne(ctx, sess.ID, headEntry); err != nil {
			return promoted, err
		}
		for _, rest := range waitlist {
			rest.Position--
		}
		promoted = append(promoted, *headEntry)
		roster++
	}
	return promoted, nil
}

// promoteOne books a single waitlisted participant and closes the gap
// it leaves in the waitlist ranks.  The target is mutated to reflect
// the committed state.
func (e *Engine) promoteOne(ctx context.Context, sessionID uint64, target *model.Participant) error {
	if err := e.store.UpdateState(ctx, target.ID, model.StateWaitlisted, model.StateBooked, 0); err != nil {
		return fmt.Errorf("promote participant %d: %w", target.ID, err)
	}
	if err := e.store.ShiftPositionsAfter(ctx, sessionID, target.Position); err != nil {
		return fmt.Errorf("renumber waitlist: %w", err)
	}
	target.State = model.StateBooked
	target.Position = 0
	return nil
}
