//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"global-chat/domain"
	"global-chat/errors"
	"global-chat/storage"
)

// UsersKey is the storage key holding the username -> secret object.
const UsersKey = "chat_users_db"

type IUserRepository interface {
	Register(username, secret string) error
	Verify(username, secret string) error
}

// UserRepository is the credential store. Secrets are stored and compared in plaintext,
// matching the format other tabs already read.
type UserRepository struct {
	mu      sync.Mutex
	storage storage.LocalStorage
	log     *slog.Logger
}

func NewUserRepository(storage storage.LocalStorage, log *slog.Logger) *UserRepository {
	return &UserRepository{storage: storage, log: log}
}

// Register inserts the entry and persists the whole table before returning.
// Usernames are compared case-sensitively.
func (u *UserRepository) Register(username, secret string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := u.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return errors.ErrUsernameTaken
	}
	users[username] = secret

	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.storage.SetItem(UsersKey, string(data))
}

func (u *UserRepository) Verify(username, secret string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := u.load()
	if err != nil {
		return err
	}
	stored, ok := users[username]
	if !ok {
		return errors.ErrUserNotFound
	}
	if stored != secret {
		return errors.ErrWrongSecret
	}
	return nil
}

// Entries returns every credential entry, mostly for inspection.
func (u *UserRepository) Entries() ([]domain.CredentialEntry, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := u.load()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.CredentialEntry, 0, len(users))
	for name, secret := range users {
		entries = append(entries, domain.CredentialEntry{Username: name, Secret: secret})
	}
	return entries, nil
}

// load reads the table. A malformed table is discarded and treated as empty.
func (u *UserRepository) load() (map[string]string, error) {
	raw, found, err := u.storage.GetItem(UsersKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", UsersKey, err)
	}
	users := make(map[string]string)
	if !found {
		return users, nil
	}
	if err = json.Unmarshal([]byte(raw), &users); err != nil {
		u.log.Warn("Discarding credential table", "error", fmt.Errorf("%w: %v", errors.ErrMalformedPersistedState, err))
		return make(map[string]string), nil
	}
	return users, nil
}
