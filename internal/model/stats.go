package model

import "time"

// StatsWindow is a derived, read-only aggregate over a date range.
// It is recomputed from participant history on demand and never
// persisted.  Rates default to zero instead of dividing by zero when
// the window contains empty sessions.
//
// Fields:
//  From, To         – inclusive bounds of the window; sessions are
//                     selected by their start time.
//  TotalSessions    – number of sessions starting in the window.
//  TotalCapacity    – sum of session capacities.
//  TotalBooked      – participants currently in the Booked state.
//  TotalCheckedIn   – participants in the CheckedIn state.
//  TotalNoShow      – participants in the NoShow state.
//  TotalWaitlisted  – participants still waitlisted.
//  FillRate         – booked / capacity, 0 when capacity is 0.
//  NoShowRate       – noShow / (booked + checkedIn + noShow), 0 when
//                     the denominator is 0.
//  AvgWaitlistDepth – mean waitlist length per session, 0 when the
//                     window has no sessions.
type StatsWindow struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	TotalSessions    int       `json:"total_sessions"`
	TotalCapacity    int       `json:"total_capacity"`
	TotalBooked      int       `json:"total_booked"`
	TotalCheckedIn   int       `json:"total_checked_in"`
	TotalNoShow      int       `json:"total_no_show"`
	TotalWaitlisted  int       `json:"total_waitlisted"`
	FillRate         float64   `json:"fill_rate"`
	NoShowRate       float64   `json:"no_show_rate"`
	AvgWaitlistDepth float64   `json:"avg_waitlist_depth"`
}
