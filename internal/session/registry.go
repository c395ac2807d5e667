package session

import (
	"fmt"
	"sync"
)

// Registry holds every session created by this process, in creation order.
// Sessions are never removed.
type Registry struct {
	mu       sync.RWMutex
	sessions []*Session
	byID     map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Session)}
}

// Add appends s. Adding a second session with the same id fails.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[s.ID()]; exists {
		return fmt.Errorf("session %s already registered", s.ID())
	}
	r.sessions = append(r.sessions, s)
	r.byID[s.ID()] = s
	return nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// Sessions returns a copy of the session list.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IsAnyRunning reports whether at least one session is STARTED.
func (r *Registry) IsAnyRunning() bool {
	for _, s := range r.Sessions() {
		if s.IsRunning() {
			return true
		}
	}
	return false
}

// Running returns the number of STARTED sessions.
func (r *Registry) Running() int {
	n := 0
	for _, s := range r.Sessions() {
		if s.IsRunning() {
			n++
		}
	}
	return n
}
