package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/alexanderramin/prdchat/internal/domain"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionBusy is returned when a session already has a call in flight.
	ErrSessionBusy = errors.New("session has a request in flight")
)

// Session is one conversation held by the registry. A submission holds the
// in-flight slot while it works on a cloned state and swaps the result in
// under mu once the model call succeeds.
type Session struct {
	ID        string
	CreatedAt time.Time

	inflight sync.Mutex

	mu     sync.RWMutex
	intake *domain.SessionState
	draft  *domain.DraftSession
}

// TryAcquire claims the session's single in-flight slot.
func (s *Session) TryAcquire() bool { return s.inflight.TryLock() }

// Release frees the in-flight slot.
func (s *Session) Release() { s.inflight.Unlock() }

// Intake returns a copy of the intake state.
func (s *Session) Intake() *domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intake.Clone()
}

// Draft returns a copy of the drafting session, or nil before drafting starts.
func (s *Session) Draft() *domain.DraftSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.Clone()
}

func (s *Session) commitIntake(state *domain.SessionState) {
	s.mu.Lock()
	s.intake = state
	s.mu.Unlock()
}

func (s *Session) commitDraft(d *domain.DraftSession) {
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// Registry holds live sessions in memory and expires idle ones after ttl.
type Registry struct {
	cache *cache.Cache
	ttl   time.Duration
	merge bool
	now   func() time.Time
}

// NewRegistry creates a registry. Idle sessions are dropped after ttl.
func NewRegistry(ttl time.Duration, merge bool) *Registry {
	return &Registry{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
		merge: merge,
		now:   time.Now,
	}
}

// Create starts a new, empty session.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC(),
		intake:    domain.NewSessionState(r.merge),
	}
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get looks up a session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete drops a session.
func (r *Registry) Delete(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
