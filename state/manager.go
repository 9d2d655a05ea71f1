package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"pointchain/storage"
)

// Manager provides typed access to ledger records stored in a key-value
// database. Records are RLP encoded; the key layout is owned by the callers.
type Manager struct {
	db storage.Database
}

// NewManager creates a manager backed by the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// KVGet loads the record stored under key into out. It reports whether the key
// existed; a missing key is not an error.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out != nil {
		if err := rlp.DecodeBytes(data, out); err != nil {
			return false, fmt.Errorf("state: decode %q: %w", key, err)
		}
	}
	return true, nil
}

// KVPut stores the RLP encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(key, encoded)
}

// KVHas reports whether a record exists under key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	return m.db.Has(key)
}

// KVAppend appends value to the byte-slice list stored under key, creating the
// list when absent. Lists back secondary indexes such as the merchant roster.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	var entries [][]byte
	if err := m.KVGetList(key, &entries); err != nil {
		return err
	}
	entries = append(entries, append([]byte(nil), value...))
	return m.KVPut(key, entries)
}

// KVGetList loads the byte-slice list stored under key into out. A missing key
// yields an empty list.
func (m *Manager) KVGetList(key []byte, out *[][]byte) error {
	found, err := m.KVGet(key, out)
	if err != nil {
		return err
	}
	if !found {
		*out = nil
	}
	return nil
}
