package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpeak/group-booking/internal/model"
)

func TestPromoteHead(t *testing.T) {
	e, _, sess := newTestEngine(2)
	ctx := context.Background()

	a := mustJoin(t, e, sess.ID, 101)
	mustJoin(t, e, sess.ID, 102)
	b := mustJoin(t, e, sess.ID, 103)
	c := mustJoin(t, e, sess.ID, 104)
	require.True(t, b.Waitlisted)
	require.True(t, c.Waitlisted)

	// Cancelling auto-promotes B, so the roster is full again and an
	// explicit promote has no seat to fill.
	_, err := e.Cancel(ctx, testTenant, sess.ID, a.Participant.ID)
	require.NoError(t, err)

	_, err = e.Promote(ctx, testTenant, sess.ID, 0)
	assert.ErrorIs(t, err, ErrCapacityFull)
}

func TestPromoteHeadAfterCapacityHold(t *testing.T) {
	e, store, sess := newTestEngine(1)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)
	b := mustJoin(t, e, sess.ID, 102)
	c := mustJoin(t, e, sess.ID, 103)
	require.Equal(t, uint32(1), b.Position)
	require.Equal(t, uint32(2), c.Position)

	// Open a seat directly in the store so no auto-promotion fires,
	// then promote the head explicitly.
	store.mu.Lock()
	store.sessions[sess.ID].Capacity = 2
	store.mu.Unlock()

	p, err := e.Promote(ctx, testTenant, sess.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, b.Participant.ID, p.ID)
	assert.Equal(t, model.StateBooked, p.State)

	wl, err := e.GetWaitlist(ctx, testTenant, sess.ID)
	require.NoError(t, err)
	require.Len(t, wl, 1)
	assert.Equal(t, c.Participant.ID, wl[0].ID)
	assert.Equal(t, uint32(1), wl[0].Position)
}

func TestPromoteOutOfOrderOverride(t *testing.T) {
	e, store, sess := newTestEngine(1)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)
	b := mustJoin(t, e, sess.ID, 102)
	c := mustJoin(t, e, sess.ID, 103)

	store.mu.Lock()
	store.sessions[sess.ID].Capacity = 2
	store.mu.Unlock()

	// Operator override skips the head: C is booked, B stays at the
	// front of the waitlist.
	p, err := e.Promote(ctx, testTenant, sess.ID, c.Participant.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Participant.ID, p.ID)

	wl, err := e.GetWaitlist(ctx, testTenant, sess.ID)
	require.NoError(t, err)
	require.Len(t, wl, 1)
	assert.Equal(t, b.Participant.ID, wl[0].ID)
	assert.Equal(t, uint32(1), wl[0].Position)
}

func TestPromoteRejections(t *testing.T) {
	e, store, sess := newTestEngine(1)
	ctx := context.Background()

	a := mustJoin(t, e, sess.ID, 101)
	mustJoin(t, e, sess.ID, 102)

	// Full roster wins over every other check.
	_, err := e.Promote(ctx, testTenant, sess.ID, 0)
	assert.ErrorIs(t, err, ErrCapacityFull)

	store.mu.Lock()
	store.sessions[sess.ID].Capacity = 3
	store.mu.Unlock()

	// Unknown participant.
	_, err = e.Promote(ctx, testTenant, sess.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// A booked participant cannot be promoted again.
	_, err = e.Promote(ctx, testTenant, sess.ID, a.Participant.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Empty waitlist with open seats.
	_, err = e.Promote(ctx, testTenant, sess.ID, 0)
	require.NoError(t, err) // books the one waitlisted entry first
	_, err = e.Promote(ctx, testTenant, sess.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCapacityRaiseBackfillsFIFO(t *testing.T) {
	e, _, sess := newTestEngine(1)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)
	b := mustJoin(t, e, sess.ID, 102)
	c := mustJoin(t, e, sess.ID, 103)
	d := mustJoin(t, e, sess.ID, 104)

	res, err := e.SetCapacity(ctx, testTenant, sess.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), res.Session.Capacity)
	require.Len(t, res.Promoted, 2)
	assert.Equal(t, b.Participant.ID, res.Promoted[0].ID)
	assert.Equal(t, c.Participant.ID, res.Promoted[1].ID)

	wl, err := e.GetWaitlist(ctx, testTenant, sess.ID)
	require.NoError(t, err)
	require.Len(t, wl, 1)
	assert.Equal(t, d.Participant.ID, wl[0].ID)
	assert.Equal(t, uint32(1), wl[0].Position)
}

func TestSetCapacityLowerNeverEvicts(t *testing.T) {
	e, store, sess := newTestEngine(3)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)
	mustJoin(t, e, sess.ID, 102)
	mustJoin(t, e, sess.ID, 103)

	res, err := e.SetCapacity(ctx, testTenant, sess.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Promoted)

	counts, err := store.CountByState(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[model.StateBooked])

	// The oversubscribed session admits no one new.
	wl := mustJoin(t, e, sess.ID, 104)
	assert.True(t, wl.Waitlisted)
}

func TestHaltedPromotionChainKeepsCommittedSteps(t *testing.T) {
	e, store, sess := newTestEngine(1)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)
	b := mustJoin(t, e, sess.ID, 102)
	mustJoin(t, e, sess.ID, 103)
	mustJoin(t, e, sess.ID, 104)

	// Raising capacity to 4 wants three promotions; fail the second
	// UpdateState so only B's promotion commits.
	store.mu.Lock()
	store.failUpdateAfter = store.updateCalls + 2
	store.mu.Unlock()

	res, err := e.SetCapacity(ctx, testTenant, sess.ID, 4)
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotNil(t, res)
	require.Len(t, res.Promoted, 1)
	assert.Equal(t, b.Participant.ID, res.Promoted[0].ID)

	store.mu.Lock()
	store.failUpdateAfter = 0
	store.mu.Unlock()

	// The chain is resumable: a retry finishes the remaining steps.
	counts, err := store.CountByState(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.StateBooked])

	res, err = e.SetCapacity(ctx, testTenant, sess.ID, 4)
	require.NoError(t, err)
	assert.Len(t, res.Promoted, 2)

	counts, err = store.CountByState(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[model.StateBooked])
	assert.Equal(t, 0, counts[model.StateWaitlisted])
}
