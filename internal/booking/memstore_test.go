package booking

import (
	"context"
	"sync"
	"time"

	"github.com/classpeak/group-booking/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  It
// mirrors the MySQL repositories' observable behavior: tenant-scoped
// lookups, the conditional booked insert, the expected-state guard on
// updates, and position renumbering.  failUpdateAfter injects a
// store failure on the nth UpdateState call to exercise halted
// promotion chains.
type memStore struct {
	mu           sync.Mutex
	sessions     map[uint64]*model.Session
	participants []*model.Participant
	nextID       uint64

	updateCalls     int
	failUpdateAfter int // fail the nth (1-based) UpdateState call; 0 disables
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[uint64]*model.Session)}
}

func (m *memStore) addSession(tenantID uint64, capacity uint32, visible bool, startsAt time.Time) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &model.Session{
		ID:       m.nextID,
		TenantID: tenantID,
		Title:    "test session",
		Capacity: capacity,
		Visible:  visible,
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(time.Hour),
		Version:  1,
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) GetSession(ctx context.Context, tenantID, sessionID uint64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SetVisibility(ctx context.Context, tenantID, sessionID uint64, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.TenantID != tenantID {
		return ErrNotFound
	}
	s.Visible = visible
	s.Version++
	return nil
}

func (m *memStore) SetCapacity(ctx context.Context, tenantID, sessionID uint64, capacity uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.TenantID != tenantID {
		return ErrNotFound
	}
	s.Capacity = capacity
	s.Version++
	return nil
}

func (m *memStore) ListSessionsInRange(ctx context.Context, tenantID uint64, from, to time.Time) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Session, 0)
	for _, s := range m.sessions {
		if s.TenantID != tenantID {
			continue
		}
		if s.StartsAt.Before(from) || s.StartsAt.After(to) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStore) GetParticipant(ctx context.Context, sessionID, participantID uint64) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.ID == participantID && p.SessionID == sessionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) GetParticipantByID(ctx context.Context, tenantID, participantID uint64) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.ID != participantID {
			continue
		}
		s, ok := m.sessions[p.SessionID]
		if !ok || s.TenantID != tenantID {
			return nil, ErrNotFound
		}
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) ListBySession(ctx context.Context, sessionID uint64) ([]model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Participant, 0)
	for _, p := range m.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) CreateBooked(ctx context.Context, p *model.Participant, capacity uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := 0
	for _, q := range m.participants {
		if q.SessionID == p.SessionID && q.State.OnRoster() {
			roster++
		}
	}
	if roster >= int(capacity) {
		return ErrConflict
	}
	m.nextID++
	p.ID = m.nextID
	p.State = model.StateBooked
	cp := *p
	m.participants = append(m.participants, &cp)
	return nil
}

func (m *memStore) CreateWaitlisted(ctx context.Context, p *model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.State = model.StateWaitlisted
	cp := *p
	m.participants = append(m.participants, &cp)
	return nil
}

func (m *memStore) UpdateState(ctx context.Context, participantID uint64, from, to model.ParticipantState, position uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.failUpdateAfter > 0 && m.updateCalls >= m.failUpdateAfter {
		return ErrUnavailable
	}
	for _, p := range m.participants {
		if p.ID != participantID {
			continue
		}
		if p.State != from {
			return ErrConflict
		}
		p.State = to
		p.Position = position
		return nil
	}
	return ErrConflict
}

func (m *memStore) ShiftPositionsAfter(ctx context.Context, sessionID uint64, position uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.State == model.StateWaitlisted && p.Position > position {
			p.Position--
		}
	}
	return nil
}

func (m *memStore) CountByState(ctx context.Context, sessionID uint64) (map[model.ParticipantState]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[model.ParticipantState]int)
	for _, p := range m.participants {
		if p.SessionID == sessionID {
			counts[p.State]++
		}
	}
	return counts, nil
}

var _ Store = (*memStore)(nil)
