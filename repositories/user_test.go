package repositories

import (
	"log/slog"
	"testing"

	"global-chat/errors"
	"global-chat/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) storage.DiskStorage {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewDiskStorage(db, slog.Default())
}

func TestUserRepository_Register_Then_Verify(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(setupStorage(t), slog.Default())

	// Given alice is not registered
	req.ErrorIs(repo.Verify("alice", "pw"), errors.ErrUserNotFound)

	// When alice registers
	req.NoError(repo.Register("alice", "pw"))

	// Then the right secret is accepted and any other is rejected
	req.NoError(repo.Verify("alice", "pw"))
	req.ErrorIs(repo.Verify("alice", "PW"), errors.ErrWrongSecret)
	req.ErrorIs(repo.Verify("alice", ""), errors.ErrWrongSecret)
}

func TestUserRepository_Register_Twice(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(setupStorage(t), slog.Default())

	req.NoError(repo.Register("alice", "first"))

	// When the same username registers again
	err := repo.Register("alice", "second")

	// Then it fails and the first secret is kept
	req.ErrorIs(err, errors.ErrUsernameTaken)
	req.NoError(repo.Verify("alice", "first"))
	req.ErrorIs(repo.Verify("alice", "second"), errors.ErrWrongSecret)
}

func TestUserRepository_Usernames_Are_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(setupStorage(t), slog.Default())

	req.NoError(repo.Register("alice", "a"))
	req.NoError(repo.Register("Alice", "b"))
	req.ErrorIs(repo.Verify("ALICE", "a"), errors.ErrUserNotFound)
}

func TestUserRepository_Persists_Plaintext_Table(t *testing.T) {
	req := require.New(t)
	store := setupStorage(t)
	repo := NewUserRepository(store, slog.Default())

	req.NoError(repo.Register("bob", "secret"))

	raw, found, err := store.GetItem(UsersKey)
	req.NoError(err)
	req.True(found)
	req.JSONEq(`{"bob":"secret"}`, raw)

	// A second repository on the same storage sees the entry
	other := NewUserRepository(store, slog.Default())
	req.NoError(other.Verify("bob", "secret"))

	entries, err := other.Entries()
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("bob", entries[0].Username)
}

func TestUserRepository_Malformed_Table_Is_Discarded(t *testing.T) {
	req := require.New(t)
	store := setupStorage(t)
	req.NoError(store.SetItem(UsersKey, "{not json"))
	repo := NewUserRepository(store, slog.Default())

	req.ErrorIs(repo.Verify("alice", "pw"), errors.ErrUserNotFound)
	req.NoError(repo.Register("alice", "pw"))
	req.NoError(repo.Verify("alice", "pw"))
}
