// Package session holds the authenticated identity used by every API call.
//
// A Session is created once at startup, loaded from its Store and passed
// down explicitly. It implements oauth2.TokenSource so the REST client can
// attach the bearer token through oauth2.Transport.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrNoSession is returned when no token is available.
	ErrNoSession = errors.New("session: not logged in")
	// ErrCallback is returned when an auth callback lacks a token or user.
	ErrCallback = errors.New("session: invalid auth callback")
)

// User is the identity returned by the backend after login.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists the raw session values.
type Store interface {
	ReadToken() (string, error)
	ReadUser() ([]byte, error)
	Write(token string, user []byte) error
	Clear() error
}

// Session is safe for concurrent use; Token is called from command goroutines.
type Session struct {
	mu    sync.RWMutex
	store Store
	token string
	user  *User

	onClear func()
}

// New returns an empty session bound to store. store may be nil for a purely
// in-memory session.
func New(store Store) *Session {
	return &Session{store: store}
}

// Load reads the persisted token and user. A user record that cannot be
// decoded is erased and the session stays logged out.
func (s *Session) Load() error {
	if s.store == nil {
		return ErrNoSession
	}
	token, err := s.store.ReadToken()
	if err != nil || strings.TrimSpace(token) == "" {
		s.reset()
		return ErrNoSession
	}
	raw, err := s.store.ReadUser()
	if err != nil {
		s.reset()
		return ErrNoSession
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.reset()
		if cerr := s.store.Clear(); cerr != nil {
			return fmt.Errorf("session: erase malformed user: %w", cerr)
		}
		return ErrNoSession
	}

	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Save replaces the session and persists it.
func (s *Session) Save(token string, u User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoSession
	}
	if s.store != nil {
		raw, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("session: encode user: %w", err)
		}
		if err := s.store.Write(token, raw); err != nil {
			return fmt.Errorf("session: persist: %w", err)
		}
	}
	s.mu.Lock()
	s.token = token
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Clear drops the in-memory session and erases the persisted copy.
func (s *Session) Clear() error {
	s.reset()
	s.mu.RLock()
	hook := s.onClear
	s.mu.RUnlock()
	if hook != nil {
		hook()
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// OnClear registers fn to run after the session is cleared.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	s.onClear = fn
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

// User returns the logged in user, if any.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

var _ oauth2.TokenSource = (*Session)(nil)

// FromCallback extracts the token and user from the query of the backend's
// auth redirect. The user parameter is URL-encoded JSON; a second level of
// encoding is tolerated.
func FromCallback(q url.Values) (string, User, error) {
	token := strings.TrimSpace(q.Get("token"))
	raw := q.Get("user")
	if token == "" || raw == "" {
		return "", User{}, fmt.Errorf("%w: missing token or user data", ErrCallback)
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		decoded, derr := url.QueryUnescape(raw)
		if derr != nil {
			return "", User{}, fmt.Errorf("%w: invalid user data", ErrCallback)
		}
		if err := json.Unmarshal([]byte(decoded), &u); err != nil {
			return "", User{}, fmt.Errorf("%w: invalid user data", ErrCallback)
		}
	}
	return token, u, nil
}
