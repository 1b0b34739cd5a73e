package client

import (
	"errors"
	"sync"
)

const sessionKey = "session"

// Session is the signed-in state of a Client: the current access token and
// the user it belongs to. Changes are written through to the Store.
type Session struct {
	mu    sync.RWMutex
	store Store
	state sessionState
}

type sessionState struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user,omitempty"`
}

func loadSession(store Store) (*Session, error) {
	s := &Session{store: store}
	if err := store.Load(sessionKey, &s.state); err != nil && !errors.Is(err, ErrNotStored) {
		return nil, err
	}
	return s, nil
}

// Token returns the current access token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Session) SignedIn() bool { return s.Token() != "" }

// IsAdmin reports whether the signed-in user has the admin role.
func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Role == RoleAdmin
}

// Set replaces the session. A nil user keeps the current one.
func (s *Session) Set(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	if user != nil {
		u := *user
		s.state.User = &u
	}
	return s.store.Save(sessionKey, s.state)
}

func (s *Session) setUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.state.User = &u
	return s.store.Save(sessionKey, s.state)
}

// Clear signs the session out.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionState{}
	return s.store.Delete(sessionKey)
}
