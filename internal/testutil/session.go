package testutil

import "sync"

// MemorySession is an in-memory credential.Store.
type MemorySession struct {
	mu    sync.Mutex
	token string

	// Error injection for testing
	GetErr error
	SetErr error
}

// NewMemorySession returns a store holding token ("" for none).
func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

// Get implements credential.Store.
func (s *MemorySession) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.token, nil
}

// Set implements credential.Store.
func (s *MemorySession) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.token = token
	return nil
}

// Clear implements credential.Store.
func (s *MemorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Token returns the stored token without error handling.
func (s *MemorySession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
