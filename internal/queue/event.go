// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// Event kinds published by the engine.  Delivery to customers
// (email/SMS) is handled by an external notification service that
// consumes the same queue; the in-process consumer only keeps an
// audit log.
const (
	KindPromoted  = "participant.promoted"
	KindCheckedIn = "participant.checked_in"
	KindNoShow    = "participant.no_show"
)

// ParticipantEvent is published whenever a participant changes state
// in a way a customer should hear about: promotion off the waitlist,
// a check-in, or a no-show mark.  It carries enough context for
// downstream consumers to notify or aggregate without querying the
// primary database.
type ParticipantEvent struct {
	Kind          string `json:"kind"`
	TenantID      uint64 `json:"tenant_id"`
	SessionID     uint64 `json:"session_id"`
	SessionTitle  string `json:"session_title"`
	StartsAt      string `json:"starts_at"`
	ParticipantID uint64 `json:"participant_id"`
	CustomerID    uint64 `json:"customer_id"`
	OccurredAt    string `json:"occurred_at"`
}
