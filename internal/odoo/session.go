package odoo

import "sync"

// Session holds the credential issued by the ERP. The client replaces the
// credential in place when it re-authenticates, so concurrent calls sharing
// a Session pick up the refreshed value.
type Session struct {
	mu sync.RWMutex
	id string
}

// NewSession wraps an existing session credential.
func NewSession(id string) *Session {
	return &Session{id: id}
}

// ID returns the current credential.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) replace(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}
