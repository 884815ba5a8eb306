package storage

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// SetupTestDB initializes a temporary Badger instance for testing
func SetupTestDB(t *testing.T) (*badger.DB, func()) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	return db, func() {
		db.Close()
	}
}

func TestDiskStorage_Set_Get_Remove(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()
	store := NewDiskStorage(db, slog.Default())

	// Given an empty storage
	_, found, err := store.GetItem("chat_users_db")
	req.NoError(err)
	req.False(found)

	// When an item is set
	req.NoError(store.SetItem("chat_users_db", `{"alice":"pw"}`))

	// Then it can be read back
	value, found, err := store.GetItem("chat_users_db")
	req.NoError(err)
	req.True(found)
	req.Equal(`{"alice":"pw"}`, value)

	// When it is removed, it is gone
	req.NoError(store.RemoveItem("chat_users_db"))
	_, found, err = store.GetItem("chat_users_db")
	req.NoError(err)
	req.False(found)
}

func TestDiskStorage_Remove_Missing_Key(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()
	store := NewDiskStorage(db, slog.Default())

	req.NoError(store.RemoveItem("globalchat_user"))
}

func TestDiskStorage_Keys(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()
	store := NewDiskStorage(db, slog.Default())

	req.NoError(store.SetItem("a", "1"))
	req.NoError(store.SetItem("b", "2"))

	items, err := store.Keys()
	req.NoError(err)
	req.Equal(map[string]string{"a": "1", "b": "2"}, items)
}

func TestOpen_InMemory(t *testing.T) {
	req := require.New(t)
	db, err := Open("")
	req.NoError(err)
	defer db.Close()

	store := NewDiskStorage(db, slog.Default())
	req.NoError(store.SetItem("k", "v"))
}
