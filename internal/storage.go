package internal

import (
	"database/sql"
	"fmt"
	"strings"
)

// Storage backend names accepted by OpenKVStore
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// KVStore is the durable local storage the chat history is mirrored to.
// It plays the role browser localStorage plays for a web client.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// OpenKVStore opens the configured backend at path
func OpenKVStore(backend, path string) (KVStore, error) {
	switch strings.ToLower(backend) {
	case "", BackendSQLite:
		return OpenSQLiteKVStore(path)
	case BackendFile:
		return NewFileKVStore(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: sqlite, file)", backend)
	}
}

// SQLiteKVStore keeps key/value pairs in a single SQLite table
type SQLiteKVStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteKVStore opens or creates the database at path
func OpenSQLiteKVStore(path string) (*SQLiteKVStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	return &SQLiteKVStore{db: db, path: path}, nil
}

// NewSQLiteKVStore wraps an already opened database that has the kv table
func NewSQLiteKVStore(db *sql.DB) *SQLiteKVStore {
	return &SQLiteKVStore{db: db, path: ":memory:"}
}

// Get returns the value for key and whether it exists
func (s *SQLiteKVStore) Get(key string) (string, bool, error) {
	value, ok, err := QueryKV(s.db, key)
	if err != nil {
		return "", false, &StorageError{Path: s.path, Op: "get", Err: err}
	}
	return value, ok, nil
}

// Set stores value under key
func (s *SQLiteKVStore) Set(key, value string) error {
	if err := UpsertKV(s.db, key, value); err != nil {
		return &StorageError{Path: s.path, Op: "set", Err: err}
	}
	return nil
}

// Remove deletes key
func (s *SQLiteKVStore) Remove(key string) error {
	if err := DeleteKV(s.db, key); err != nil {
		return &StorageError{Path: s.path, Op: "remove", Err: err}
	}
	return nil
}

// Keys lists stored keys
func (s *SQLiteKVStore) Keys() ([]string, error) {
	keys, err := ListKVKeys(s.db)
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "list", Err: err}
	}
	return keys, nil
}

// Path returns the database location
func (s *SQLiteKVStore) Path() string {
	return s.path
}

// Close closes the database
func (s *SQLiteKVStore) Close() error {
	return s.db.Close()
}
