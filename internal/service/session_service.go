package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"place-lookup/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = errors.New("service: session not found")

// ControllerFactory creates the controller of a new session.
type ControllerFactory func() *session.Controller

type sessionEntry struct {
	controller *session.Controller
	lastSeen   time.Time
}

// SessionService keeps the lookup sessions of all users.
type SessionService struct {
	newController ControllerFactory
	idleTTL       time.Duration
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewSessionService creates a session registry. Sessions idle for longer than
// idleTTL are removed by Run.
func NewSessionService(factory ControllerFactory, idleTTL time.Duration) *SessionService {
	return &SessionService{
		newController: factory,
		idleTTL:       idleTTL,
		now:           time.Now,
		sessions:      make(map[string]*sessionEntry),
	}
}

// Create starts a new session.
func (s *SessionService) Create() (string, session.Snapshot) {
	id := uuid.NewString()
	c := s.newController()

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{controller: c, lastSeen: s.now()}
	s.mu.Unlock()

	return id, c.Session().Snapshot()
}

// Get returns the state of session id.
func (s *SessionService) Get(id string) (session.Snapshot, error) {
	c, err := s.controller(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return c.Session().Snapshot(), nil
}

// Delete ends session id.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SuggestionText feeds the suggestion input of session id.
func (s *SessionService) SuggestionText(ctx context.Context, id, text string) (session.Snapshot, error) {
	return s.apply(id, func(c *session.Controller) error {
		return c.SuggestionTextChanged(ctx, text)
	})
}

// Commit commits the i-th suggestion of session id.
func (s *SessionService) Commit(id string, i int) (session.Snapshot, error) {
	return s.apply(id, func(c *session.Controller) error {
		_, err := c.CommitSuggestion(i)
		return err
	})
}

// RefinementText feeds the refinement input of session id.
func (s *SessionService) RefinementText(ctx context.Context, id, text string) (session.Snapshot, error) {
	return s.apply(id, func(c *session.Controller) error {
		return c.RefinementTextChanged(ctx, text)
	})
}

// RefinementCommit resolves the refinement text of session id.
func (s *SessionService) RefinementCommit(ctx context.Context, id, text string) (session.Snapshot, error) {
	return s.apply(id, func(c *session.Controller) error {
		return c.RefinementCommit(ctx, text)
	})
}

// apply runs fn on the controller of session id and returns the resulting
// state together with fn's error, so callers can show both.
func (s *SessionService) apply(id string, fn func(*session.Controller) error) (session.Snapshot, error) {
	c, err := s.controller(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := fn(c); err != nil {
		return c.Session().Snapshot(), fmt.Errorf("service: session %s: %w", id, err)
	}
	return c.Session().Snapshot(), nil
}

func (s *SessionService) controller(id string) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = s.now()
	return entry.controller, nil
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes sessions idle for longer than the idle TTL and returns
// how many were removed.
func (s *SessionService) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.now().Add(-s.idleTTL)
	evicted := 0
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions until ctx is done.
func (s *SessionService) Run(ctx context.Context) error {
	interval := s.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				log.Debug().Int("evicted", n).Int("live", s.Count()).Msg("evicted idle sessions")
			}
		}
	}
}
