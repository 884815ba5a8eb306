package services

import (
	"fmt"
	"log/slog"
	"testing"

	"global-chat/domain"
	"global-chat/errors"
	"global-chat/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newLoggedOutManager(t *testing.T) (*SessionManager, *mocks.MockIUserRepository, *mocks.MockIIdentityRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	identities := mocks.NewMockIIdentityRepository(ctrl)
	identities.EXPECT().Load().Return(nil, nil).Times(1)
	return NewSessionManager(users, identities, slog.Default()), users, identities
}

func TestSessionManager_Login(t *testing.T) {
	t.Run("should login and persist identity with correct credentials", func(t *testing.T) {
		req := require.New(t)
		manager, users, identities := newLoggedOutManager(t)
		expected := domain.NewIdentity("alice")

		users.EXPECT().Verify("alice", "pw").Return(nil).Times(1)
		identities.EXPECT().Save(expected).Return(nil).Times(1)

		identity, err := manager.Login("alice", "pw")

		req.NoError(err)
		req.Equal(expected, identity)
		req.Equal(domain.PhaseLoggedIn, manager.Phase())
		current, ok := manager.Current()
		req.True(ok)
		req.Equal("alice", current.Username)
	})

	t.Run("should stay logged out with a wrong secret", func(t *testing.T) {
		req := require.New(t)
		manager, users, identities := newLoggedOutManager(t)

		users.EXPECT().Verify("alice", "nope").Return(errors.ErrWrongSecret).Times(1)
		identities.EXPECT().Save(gomock.Any()).Times(0)

		_, err := manager.Login("alice", "nope")

		req.ErrorIs(err, errors.ErrWrongSecret)
		req.Equal(domain.PhaseLoggedOut, manager.Phase())
	})

	t.Run("should reject blank fields without reaching the store", func(t *testing.T) {
		req := require.New(t)
		manager, users, _ := newLoggedOutManager(t)

		users.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := manager.Login("  ", "pw")

		req.ErrorIs(err, errors.ErrEmptyCredentials)
	})

	t.Run("should stay logged out when the identity cannot be persisted", func(t *testing.T) {
		req := require.New(t)
		manager, users, identities := newLoggedOutManager(t)

		users.EXPECT().Verify("alice", "pw").Return(nil)
		identities.EXPECT().Save(gomock.Any()).Return(fmt.Errorf("disk full"))

		_, err := manager.Login("alice", "pw")

		req.Error(err)
		req.Equal(domain.PhaseLoggedOut, manager.Phase())
	})
}

func TestSessionManager_Register(t *testing.T) {
	t.Run("should register and log straight in", func(t *testing.T) {
		req := require.New(t)
		manager, users, identities := newLoggedOutManager(t)

		users.EXPECT().Register("bob", "pw").Return(nil).Times(1)
		// No second credential check after registration
		users.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)
		identities.EXPECT().Save(domain.NewIdentity("bob")).Return(nil).Times(1)

		identity, err := manager.Register("bob", "pw")

		req.NoError(err)
		req.Equal("bob", identity.Username)
		req.Equal(domain.PhaseLoggedIn, manager.Phase())
	})

	t.Run("should fail when username is taken", func(t *testing.T) {
		req := require.New(t)
		manager, users, identities := newLoggedOutManager(t)

		users.EXPECT().Register("bob", "pw").Return(errors.ErrUsernameTaken)
		identities.EXPECT().Save(gomock.Any()).Times(0)

		_, err := manager.Register("bob", "pw")

		req.ErrorIs(err, errors.ErrUsernameTaken)
		req.Equal(domain.PhaseLoggedOut, manager.Phase())
	})
}

func TestSessionManager_Logout(t *testing.T) {
	req := require.New(t)
	manager, users, identities := newLoggedOutManager(t)
	users.EXPECT().Verify("alice", "pw").Return(nil)
	identities.EXPECT().Save(gomock.Any()).Return(nil)
	_, err := manager.Login("alice", "pw")
	req.NoError(err)

	// When logging out
	identities.EXPECT().Clear().Return(nil).Times(1)
	req.NoError(manager.Logout())

	// Then the session is empty
	req.Equal(domain.PhaseLoggedOut, manager.Phase())
	_, ok := manager.Current()
	req.False(ok)
}

func TestSessionManager_Restore(t *testing.T) {
	t.Run("should trust a persisted identity", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		users := mocks.NewMockIUserRepository(ctrl)
		identities := mocks.NewMockIIdentityRepository(ctrl)
		alice := domain.NewIdentity("alice")

		identities.EXPECT().Load().Return(&alice, nil).Times(1)
		users.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		manager := NewSessionManager(users, identities, slog.Default())

		req.Equal(domain.PhaseLoggedIn, manager.Phase())
		current, _ := manager.Current()
		req.Equal(alice, current)
	})

	t.Run("should discard a malformed identity and stay logged out", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		users := mocks.NewMockIUserRepository(ctrl)
		identities := mocks.NewMockIIdentityRepository(ctrl)

		identities.EXPECT().Load().
			Return(nil, fmt.Errorf("%w: missing username", errors.ErrMalformedPersistedState)).Times(1)
		identities.EXPECT().Clear().Return(nil).Times(1)

		manager := NewSessionManager(users, identities, slog.Default())

		req.Equal(domain.PhaseLoggedOut, manager.Phase())
	})

	t.Run("should stay logged out when storage is unreadable", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		identities := mocks.NewMockIIdentityRepository(ctrl)

		identities.EXPECT().Load().Return(nil, fmt.Errorf("io error")).Times(1)
		identities.EXPECT().Clear().Times(0)

		manager := NewSessionManager(mocks.NewMockIUserRepository(ctrl), identities, slog.Default())

		req.Equal(domain.PhaseLoggedOut, manager.Phase())
	})
}
