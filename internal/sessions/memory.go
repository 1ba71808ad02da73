package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]utils.SessionData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]utils.SessionData)}
}

// Create stores s and drops any expired sessions.
func (m *MemoryStore) Create(ctx context.Context, s utils.SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, existing := range m.sessions {
		if existing.ExpiresAt.Before(now) {
			delete(m.sessions, id)
		}
	}
	m.sessions[s.SessionID] = s
	return nil
}

// FindSessionByID returns expired sessions as-is; the middleware decides.
func (m *MemoryStore) FindSessionByID(ctx context.Context, id string) (utils.SessionData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return utils.SessionData{}, domain.NewNotFoundError("session")
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return domain.NewNotFoundError("session")
	}
	delete(m.sessions, id)
	return nil
}
