package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsEmptyWindow(t *testing.T) {
	e, _, _ := newTestEngine(2)
	ctx := context.Background()

	// A range containing no sessions yields all-zero counts and rates.
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	w, err := e.Stats(ctx, testTenant, from, from.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, w.TotalSessions)
	assert.Zero(t, w.FillRate)
	assert.Zero(t, w.NoShowRate)
	assert.Zero(t, w.AvgWaitlistDepth)
}

func TestStatsZeroCapacitySession(t *testing.T) {
	store := newMemStore()
	sess := store.addSession(testTenant, 0, true, time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC))
	e := NewEngine(store)

	w, err := e.Stats(context.Background(), testTenant, sess.StartsAt.Add(-time.Hour), sess.StartsAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, w.TotalSessions)
	assert.Equal(t, 0, w.TotalCapacity)
	assert.Zero(t, w.FillRate)
	assert.Zero(t, w.NoShowRate)
}

func TestStatsAggregatesStates(t *testing.T) {
	e, store, sess := newTestEngine(3)
	ctx := context.Background()

	a := mustJoin(t, e, sess.ID, 101)
	b := mustJoin(t, e, sess.ID, 102)
	mustJoin(t, e, sess.ID, 103)
	mustJoin(t, e, sess.ID, 104) // waitlisted
	mustJoin(t, e, sess.ID, 105) // waitlisted

	_, err := e.CheckIn(ctx, testTenant, a.Participant.ID)
	require.NoError(t, err)
	_, err = e.MarkNoShow(ctx, testTenant, b.Participant.ID)
	require.NoError(t, err)

	// A second session in range with no participants must not skew
	// the rates into division errors.
	store.addSession(testTenant, 2, true, sess.StartsAt.Add(time.Hour))

	w, err := e.Stats(ctx, testTenant, sess.StartsAt.Add(-time.Hour), sess.StartsAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, w.TotalSessions)
	assert.Equal(t, 5, w.TotalCapacity)
	assert.Equal(t, 1, w.TotalBooked)
	assert.Equal(t, 1, w.TotalCheckedIn)
	assert.Equal(t, 1, w.TotalNoShow)
	assert.Equal(t, 2, w.TotalWaitlisted)
	assert.InDelta(t, 1.0/5.0, w.FillRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, w.NoShowRate, 1e-9)
	assert.InDelta(t, 1.0, w.AvgWaitlistDepth, 1e-9)
}

func TestStatsRangeAndTenantFiltering(t *testing.T) {
	e, store, sess := newTestEngine(2)
	ctx := context.Background()

	mustJoin(t, e, sess.ID, 101)

	// Out of range: starts after the window closes.
	store.addSession(testTenant, 5, true, sess.StartsAt.Add(48*time.Hour))
	// Other tenant, same window.
	store.addSession(2, 5, true, sess.StartsAt)

	w, err := e.Stats(ctx, testTenant, sess.StartsAt.Add(-time.Hour), sess.StartsAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, w.TotalSessions)
	assert.Equal(t, 2, w.TotalCapacity)
	assert.Equal(t, 1, w.TotalBooked)
}
