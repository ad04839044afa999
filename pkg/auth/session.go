package auth

import (
	"context"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"taskdesk/pkg/storage"
	"taskdesk/pkg/utils"
)

// Authenticator is the backend surface the session depends on
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, User, error)
	Register(ctx context.Context, name, username, password string) (User, error)
	Profile(ctx context.Context) (User, error)
}

// Session owns the credential and the resolved user.
// A user is only ever held while a credential is present.
type Session struct {
	mu sync.RWMutex

	store storage.Store
	auth  Authenticator

	state State
	token string
	user  *User
}

// NewSession reads the persisted credential. The session starts Uninitialized and loading.
func NewSession(store storage.Store, auth Authenticator) (*Session, error) {
	token, _, err := store.GetItem(storage.TokenKey)
	if err != nil {
		return nil, err
	}

	return &Session{
		store: store,
		auth:  auth,
		state: Uninitialized,
		token: token,
	}, nil
}

// Resolve runs session initialization: without a credential the session becomes
// Anonymous without touching the network, otherwise the profile is fetched.
func (s *Session) Resolve(ctx context.Context) State {
	s.mu.Lock()
	if s.token == "" {
		s.state = Anonymous
		s.user = nil
		s.mu.Unlock()
		utils.Log("No stored credential, session is anonymous")
		return Anonymous
	}
	s.state = ResolvingProfile
	s.mu.Unlock()

	_ = s.FetchProfile(ctx)
	return s.State()
}

// FetchProfile validates the credential against the backend. Any failure clears it.
func (s *Session) FetchProfile(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		s.mu.Lock()
		s.state = Anonymous
		s.user = nil
		s.mu.Unlock()
		return ErrUnauthenticated
	}

	user, err := s.auth.Profile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The credential changed while the request was in flight; its outcome no longer applies.
	if s.token != token {
		if s.state == ResolvingProfile {
			s.state = Anonymous
			if s.user != nil {
				s.state = Authenticated
			}
		}
		return nil
	}

	if err != nil {
		utils.Log("Profile fetch failed, clearing credential: %v", err)
		s.clearLocked()
		return err
	}

	s.user = &user
	s.state = Authenticated
	utils.Log("Session resolved for user: %s", user.Username)
	return nil
}

// SetCredential persists token first, then makes it the in-memory credential
func (s *Session) SetCredential(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetItem(storage.TokenKey, token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Login authenticates and, on success, stores the credential and user
func (s *Session) Login(ctx context.Context, username, password string) (User, error) {
	token, user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		utils.Log("Login failed for %s: %v", username, err)
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetItem(storage.TokenKey, token); err != nil {
		return User{}, err
	}
	s.token = token
	s.user = &user
	s.state = Authenticated

	utils.Log("Logged in as %s", user.Username)
	return user, nil
}

// Register creates an account; the session is left unchanged
func (s *Session) Register(ctx context.Context, name, username, password string) (User, error) {
	return s.auth.Register(ctx, name, username, password)
}

// Logout removes the credential and user. No backend call is made.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	err := s.store.RemoveItem(storage.TokenKey)
	s.token = ""
	s.user = nil
	s.state = Anonymous
	return err
}

// State returns the lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading is true until the initial resolution has finished
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Uninitialized || s.state == ResolvingProfile
}

// User returns a copy of the resolved user, or nil
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// HasCredential reports whether a credential is held
func (s *Session) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Claims decodes the credential without verifying its signature.
// The profile endpoint stays the only authority on validity.
func (s *Session) Claims() (*Claims, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
