//go:generate go run go.uber.org/mock/mockgen -source=disk.go -destination=../mocks/mock_local_storage.go -package=mocks
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// LocalStorage is the origin-wide string key-value store shared by every tab.
type LocalStorage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// DiskStorage keeps the origin storage in BadgerDB.
// Keys are stored under "ls:{key}" so other data can share the database later.
type DiskStorage struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDiskStorage(db *badger.DB, log *slog.Logger) DiskStorage {
	return DiskStorage{db: db, log: log}
}

// Open opens (or creates) the badger directory at path. An empty path keeps everything in memory.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage %q: %w", path, err)
	}
	return db, nil
}

func itemKey(key string) []byte {
	return []byte("ls:" + key)
}

func (d DiskStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(itemKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d DiskStorage) SetItem(key, value string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(key), []byte(value))
	})
}

// RemoveItem deletes the key. Removing a missing key is not an error.
func (d DiskStorage) RemoveItem(key string) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(itemKey(key))
	})
	if err != nil {
		d.log.Error("Unable to remove item", "key", key, "error", err)
	}
	return err
}

// Keys returns every stored item by key.
func (d DiskStorage) Keys() (map[string]string, error) {
	items := make(map[string]string)
	err := d.db.View(func(txn *badger.Txn) error {
		prefix := []byte("ls:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				items[key] = string(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return items, err
}
