package repository

import (
	"database/sql"

	"github.com/classpeak/group-booking/internal/booking"
)

// Store composes the session and participant repositories into the
// single persistence surface the engine consumes.
type Store struct {
	*SessionRepo
	*ParticipantRepo
}

// NewStore returns a Store with both repositories bound to the same
// database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		SessionRepo:     NewSessionRepo(db),
		ParticipantRepo: NewParticipantRepo(db),
	}
}

var _ booking.Store = (*Store)(nil)
