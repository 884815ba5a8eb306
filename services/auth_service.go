//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_session_manager.go -package=mocks
package services

import (
	"fmt"
	"log/slog"
	"sync"

	"global-chat/auth"
	"global-chat/domain"
	"global-chat/errors"
	"global-chat/repositories"
)

type ISessionManager interface {
	Login(username, secret string) (domain.Identity, error)
	Register(username, secret string) (domain.Identity, error)
	Logout() error
	Restore() domain.AppPhase
	Current() (domain.Identity, bool)
	Phase() domain.AppPhase
}

// SessionManager holds the tab's authenticated identity.
// It is either logged out or logged in with exactly one Identity.
type SessionManager struct {
	mu         sync.RWMutex
	users      repositories.IUserRepository
	identities repositories.IIdentityRepository
	log        *slog.Logger
	phase      domain.AppPhase
	identity   domain.Identity
}

// NewSessionManager starts in whatever state Restore finds.
func NewSessionManager(users repositories.IUserRepository, identities repositories.IIdentityRepository, log *slog.Logger) *SessionManager {
	s := &SessionManager{users: users, identities: identities, log: log}
	s.Restore()
	return s
}

func (s *SessionManager) Login(username, secret string) (domain.Identity, error) {
	if err := auth.ValidateCredentials(auth.CredentialsRequest{Username: username, Secret: secret}); err != nil {
		return domain.Identity{}, err
	}
	if err := s.users.Verify(username, secret); err != nil {
		return domain.Identity{}, err
	}
	return s.authenticate(username)
}

// Register creates the account and logs straight in.
func (s *SessionManager) Register(username, secret string) (domain.Identity, error) {
	if err := auth.ValidateCredentials(auth.CredentialsRequest{Username: username, Secret: secret}); err != nil {
		return domain.Identity{}, err
	}
	if err := s.users.Register(username, secret); err != nil {
		return domain.Identity{}, err
	}
	s.log.Info("Account created", "username", username)
	return s.authenticate(username)
}

func (s *SessionManager) authenticate(username string) (domain.Identity, error) {
	identity := domain.NewIdentity(username)
	if err := s.identities.Save(identity); err != nil {
		return domain.Identity{}, fmt.Errorf("persist identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.phase = domain.PhaseLoggedIn
	s.log.Info("Logged in", "username", username)
	return identity, nil
}

func (s *SessionManager) Logout() error {
	s.mu.Lock()
	s.identity = domain.Identity{}
	s.phase = domain.PhaseLoggedOut
	s.mu.Unlock()

	if err := s.identities.Clear(); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// Restore trusts whatever identity is persisted, without checking credentials again.
// A malformed entry is discarded and the session stays logged out.
func (s *SessionManager) Restore() domain.AppPhase {
	identity, err := s.identities.Load()
	switch {
	case errors.Is(err, errors.ErrMalformedPersistedState):
		s.log.Warn("Discarding persisted identity", "error", err)
		if err = s.identities.Clear(); err != nil {
			s.log.Error("Unable to discard persisted identity", "error", err)
		}
		identity = nil
	case err != nil:
		s.log.Error("Unable to read persisted identity", "error", err)
		identity = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if identity == nil {
		s.identity = domain.Identity{}
		s.phase = domain.PhaseLoggedOut
		return s.phase
	}
	s.identity = *identity
	s.phase = domain.PhaseLoggedIn
	return s.phase
}

func (s *SessionManager) Current() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.phase == domain.PhaseLoggedIn
}

func (s *SessionManager) Phase() domain.AppPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}
