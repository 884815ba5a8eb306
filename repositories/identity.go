//go:generate go run go.uber.org/mock/mockgen -source=identity.go -destination=../mocks/mock_identity_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"global-chat/domain"
	"global-chat/errors"
	"global-chat/storage"
)

// IdentityKey is the storage key holding the logged-in identity.
const IdentityKey = "globalchat_user"

type IIdentityRepository interface {
	Save(identity domain.Identity) error
	Load() (*domain.Identity, error)
	Clear() error
}

type IdentityRepository struct {
	storage storage.LocalStorage
}

func NewIdentityRepository(storage storage.LocalStorage) IdentityRepository {
	return IdentityRepository{storage: storage}
}

func (r IdentityRepository) Save(identity domain.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.storage.SetItem(IdentityKey, string(data))
}

// Load returns nil when nothing is persisted.
// An entry that does not parse or has no username yields ErrMalformedPersistedState.
func (r IdentityRepository) Load() (*domain.Identity, error) {
	raw, found, err := r.storage.GetItem(IdentityKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var identity domain.Identity
	if err = json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPersistedState, err)
	}
	if identity.Username == "" {
		return nil, fmt.Errorf("%w: missing username", errors.ErrMalformedPersistedState)
	}
	return &identity, nil
}

func (r IdentityRepository) Clear() error {
	return r.storage.RemoveItem(IdentityKey)
}
