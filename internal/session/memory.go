package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the default Store: a mutex-guarded in-process table.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Turn)}
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = []Turn{}
	s.mu.Unlock()
	return sessionID, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	s.sessions[sessionID] = trimTurns(append(history, turns...))
	return nil
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	out := make([]Turn, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
