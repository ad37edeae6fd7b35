package seats

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLoader keeps session data in memory. It backs tests and single-process demos.
type MemoryLoader struct {
	mu       sync.Mutex
	sessions map[string]*SessionData
	loads    map[string]int
}

func NewMemoryLoader(data ...*SessionData) *MemoryLoader {
	m := &MemoryLoader{
		sessions: make(map[string]*SessionData),
		loads:    make(map[string]int),
	}
	for _, d := range data {
		m.Put(d)
	}
	return m
}

func (m *MemoryLoader) Put(data *SessionData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[data.SessionID] = data
}

func (m *MemoryLoader) LoadSession(ctx context.Context, sessionID string) (*SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	m.loads[sessionID]++

	out := &SessionData{
		SessionID: data.SessionID,
		Layout:    data.Layout,
		Blocked:   append([]SeatRef(nil), data.Blocked...),
		Booked:    make(map[SeatRef]string, len(data.Booked)),
	}
	for ref, id := range data.Booked {
		out.Booked[ref] = id
	}
	return out, nil
}

// Loads reports how many times a session was loaded
func (m *MemoryLoader) Loads(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[sessionID]
}
