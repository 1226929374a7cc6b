package model

import "time"

// Session represents a fixed-capacity bookable time slot, such as a
// group class.  Sessions are created by the scheduling system with a
// capacity that bounds the roster at all times.  The visibility flag
// controls whether the session appears in availability listings; a
// hidden session is still fully managed by the engine.
//
// Fields:
//  ID        – primary key identifier.
//  TenantID  – owning tenant; every read and write is scoped to it.
//  Title     – human-readable name of the class or session.
//  Capacity  – maximum number of roster participants.
//  Visible   – whether the session appears in availability listings.
//  StartsAt  – when the session begins.
//  EndsAt    – when the session ends (must be after StartsAt).
//  Version   – optimistic concurrency counter, bumped on every
//              mutation so readers outside the session lock can
//              detect stale snapshots.
//  CreatedAt – timestamp when the record was created.
//  UpdatedAt – timestamp when the record was last updated.
type Session struct {
	ID        uint64    // sessions.id
	TenantID  uint64    // sessions.tenant_id
	Title     string    // sessions.title
	Capacity  uint32    // sessions.capacity
	Visible   bool      // sessions.visible
	StartsAt  time.Time // sessions.starts_at
	EndsAt    time.Time // sessions.ends_at
	Version   uint32    // sessions.version
	CreatedAt time.Time // sessions.created_at
	UpdatedAt time.Time // sessions.updated_at
}
