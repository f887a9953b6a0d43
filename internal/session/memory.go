package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

const DefaultMaxEntries = 1000

// MemoryStore keeps sessions in process memory. Entries expire after ttl of inactivity,
// and at most maxEntries are held; the least recently saved one is dropped to make room.
type MemoryStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return State{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return State{}, false, nil
	}
	return cloneState(e.state), true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictExpired(now)
	if _, ok := s.entries[id]; !ok && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}
	s.entries[id] = memoryEntry{state: cloneState(state), expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.expiresAt.Before(oldest) {
			oldestID, oldest = id, e.expiresAt
		}
	}
	delete(s.entries, oldestID)
}

func cloneState(st State) State {
	out := st
	if st.Image != nil {
		out.Image = append([]byte(nil), st.Image...)
	}
	if st.Prediction != nil {
		p := *st.Prediction
		p.Probabilities = append(p.Probabilities[:0:0], st.Prediction.Probabilities...)
		out.Prediction = &p
	}
	return out
}
