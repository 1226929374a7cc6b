// Package booking implements the group booking capacity and waitlist
// engine: per-session serialized joins and cancellations, FIFO
// waitlist promotion, the attendance state machine and derived stats.
// This file defines the sentinel errors shared by the engine and its
// store implementations.  Handlers compare against these values with
// errors.Is to select an HTTP status; internal errors are never
// surfaced verbatim to clients.
package booking

import "errors"

// ErrNotFound is returned when a session or participant does not
// exist for the calling tenant.  Cross-tenant access deliberately
// yields the same error so that existence never leaks across the
// tenant boundary.  Handlers should translate this into a 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateParticipant is returned when a customer who is already
// active in a session (waitlisted, booked, checked in or no-show)
// attempts to join it again.  Handlers should translate this into a
// 409 response.
var ErrDuplicateParticipant = errors.New("duplicate participant")

// ErrCapacityFull is returned when a promotion is attempted against a
// session whose roster already equals its capacity.  Handlers should
// translate this into a 409 response.
var ErrCapacityFull = errors.New("capacity full")

// ErrInvalidTransition is returned when an attendance operation would
// violate the participant lifecycle, such as marking a checked-in
// participant as a no-show.  Handlers should translate this into a
// 422 response.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrConflict is returned by the store when a conditional write loses
// a race, such as a booked insert finding the roster full.  The
// engine treats it as recoverable: a join that loses the last seat
// falls back to the waitlist rather than failing.
var ErrConflict = errors.New("conflict")

// ErrUnavailable is returned when the persistence layer or another
// collaborator cannot be reached in time.  The failed statement wrote
// nothing, every step that committed before it is kept, and a retry
// resumes from the committed state; the engine never retries
// internally.  Handlers should translate this into a 503 response.
var ErrUnavailable = errors.New("unavailable")
