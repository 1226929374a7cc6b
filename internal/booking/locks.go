package booking

import "sync"

// sessionLocks is a keyed lock table providing one logical mutex per
// session id.  Operations on the same session are serialized while
// operations on distinct sessions proceed independently; this is the
// correctness-critical property that keeps concurrent joins from
// overselling the last seat.  Entries are reference counted and
// removed from the table once no goroutine holds or waits on them,
// so an idle engine carries no lock state.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[uint64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[uint64]*lockEntry)}
}

// acquire blocks until the caller holds the exclusive section for the
// session id and returns the entry to pass back to release.  Waiters
// are granted the lock by sync.Mutex, which hands access to the
// longest waiter under contention, so no request starves.
func (l *sessionLocks) acquire(sessionID uint64) *lockEntry {
	l.mu.Lock()
	e, ok := l.entries[sessionID]
	if !ok {
		e = &lockEntry{}
		l.entries[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

// release unlocks the session's exclusive section and drops the
// reference, deleting the entry when it was the last one.
func (l *sessionLocks) release(sessionID uint64, e *lockEntry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, sessionID)
	}
	l.mu.Unlock()
}

// size reports the number of live lock entries.  Used to verify that
// idle entries are collected.
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
