package booking

import (
	"context"
	"time"

	"github.com/classpeak/group-booking/internal/model"
)

// Stats aggregates participant counts for every session of the tenant
// whose start time falls within [from, to].  It is a pure read over
// store snapshots and never enters a session's exclusive section, so
// a count may lag a concurrent mutation by one request; that small
// staleness buys full read/write isolation.  Empty windows and
// zero-capacity sessions yield zero rates rather than errors.
func (e *Engine) Stats(ctx context.Context, tenantID uint64, from, to time.Time) (*model.StatsWindow, error) {
	sessions, err := e.store.ListSessionsInRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	w := &model.StatsWindow{From: from, To: to, TotalSessions: len(sessions)}
	for _, sess := range sessions {
		w.TotalCapacity += int(sess.Capacity)
		counts, err := e.store.CountByState(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		w.TotalBooked += counts[model.StateBooked]
		w.TotalCheckedIn += counts[model.StateCheckedIn]
		w.TotalNoShow += counts[model.StateNoShow]
		w.TotalWaitlisted += counts[model.StateWaitlisted]
	}
	if w.TotalCapacity > 0 {
		w.FillRate = float64(w.TotalBooked) / float64(w.TotalCapacity)
	}
	if attended := w.TotalBooked + w.TotalCheckedIn + w.TotalNoShow; attended > 0 {
		w.NoShowRate = float64(w.TotalNoShow) / float64(attended)
	}
	if w.TotalSessions > 0 {
		w.AvgWaitlistDepth = float64(w.TotalWaitlisted) / float64(w.TotalSessions)
	}
	return w, nil
}
