package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/logger"
)

// ErrStoreFull means the session cache hit its hard size cap and the actor
// had no existing session to replace.
var ErrStoreFull = errors.New("session store is full")

// Store holds at most one live session per actor. Implementations expire
// sessions after a TTL of inactivity; Get must treat an expired-but-unswept
// session as absent.
type Store interface {
	Get(actorID int64) (*domain.Session, bool)
	Put(s *domain.Session) error
	Delete(actorID int64)
	Len() int
	Sweep() int
	Run(ctx context.Context)
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session

	ttl        time.Duration
	sweepEvery time.Duration
	maxEntries int
}

// NewMemoryStore builds an in-memory bounded session store.
func NewMemoryStore(ttl, sweepEvery time.Duration, maxEntries int) Store {
	return &memoryStore{
		sessions:   make(map[int64]*domain.Session),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		maxEntries: maxEntries,
	}
}

// Get returns the actor's live session. The TTL is re-checked here because
// the periodic sweep may not have run yet.
func (m *memoryStore) Get(actorID int64) (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[actorID]
	if !ok {
		return nil, false
	}
	if s.ExpiredAt(time.Now(), m.ttl) {
		delete(m.sessions, actorID)
		logger.Debug("Dropped expired session on access", "actor_id", actorID, "flow", string(s.Kind))
		return nil, false
	}
	return s, true
}

// Put stores the session, replacing any existing session for the actor.
func (m *memoryStore) Put(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ActorID]; !exists && len(m.sessions) >= m.maxEntries {
		return ErrStoreFull
	}
	m.sessions[s.ActorID] = s
	return nil
}

func (m *memoryStore) Delete(actorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, actorID)
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *memoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	dropped := 0
	for actorID, s := range m.sessions {
		if s.ExpiredAt(now, m.ttl) {
			delete(m.sessions, actorID)
			dropped++
		}
	}
	return dropped
}

// Run sweeps periodically until the context is cancelled.
func (m *memoryStore) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := m.Sweep(); dropped > 0 {
				logger.Info("Session sweep removed expired sessions", "dropped", dropped, "remaining", m.Len())
			}
		}
	}
}
