package telemetry

import (
	"sync"

	"github.com/wanderquiz/beacon/internal/event"
)

// MemoryStore is the last-resort sink: appends cannot fail, contents are
// lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	events []event.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// ReadAll returns a copy of the buffered events, oldest first.
func (s *MemoryStore) ReadAll() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}
