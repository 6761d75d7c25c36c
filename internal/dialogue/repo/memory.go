package repo

import (
	"context"
	"sync"

	"github.com/subscription-bot/server/internal/dialogue/model"
)

// MemorySessionStore keeps sessions for the process lifetime.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[int64]*model.Session{}}
}

func (m *MemorySessionStore) Get(_ context.Context, userID int64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return clone(s), nil
}

func (m *MemorySessionStore) Set(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	m.sessions[s.UserID] = clone(s)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// clone keeps callers from mutating stored state without Set.
func clone(s *model.Session) *model.Session {
	c := *s
	c.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	return &c
}

var _ model.SessionStore = (*MemorySessionStore)(nil)
