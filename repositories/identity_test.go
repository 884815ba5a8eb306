package repositories

import (
	"testing"

	"global-chat/domain"
	"global-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestIdentityRepository_Save_Load_Clear(t *testing.T) {
	req := require.New(t)
	store := setupStorage(t)
	repo := NewIdentityRepository(store)

	// Given nothing is persisted
	identity, err := repo.Load()
	req.NoError(err)
	req.Nil(identity)

	// When an identity is saved
	alice := domain.NewIdentity("alice")
	req.NoError(repo.Save(alice))

	// Then it is persisted as {username, avatar}
	raw, _, err := store.GetItem(IdentityKey)
	req.NoError(err)
	req.JSONEq(`{"username":"alice","avatar":"`+alice.AvatarURL+`"}`, raw)

	identity, err = repo.Load()
	req.NoError(err)
	req.Equal(alice, *identity)

	// When it is cleared, nothing is loaded anymore
	req.NoError(repo.Clear())
	identity, err = repo.Load()
	req.NoError(err)
	req.Nil(identity)
}

func TestIdentityRepository_Load_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{oops"},
		{name: "missing username", raw: `{"avatar":"https://picsum.photos/seed/1/200"}`},
		{name: "empty username", raw: `{"username":""}`},
		{name: "null", raw: "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			store := setupStorage(t)
			req.NoError(store.SetItem(IdentityKey, tt.raw))

			identity, err := NewIdentityRepository(store).Load()

			req.Nil(identity)
			req.ErrorIs(err, errors.ErrMalformedPersistedState)
		})
	}
}
