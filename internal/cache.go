package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileKVStore keeps each key in its own file under a directory. Writes go to
// a temp file first and are renamed into place so a crash never leaves a
// half-written snapshot.
type FileKVStore struct {
	dir string
}

// NewFileKVStore creates the store, ensuring dir exists
func NewFileKVStore(dir string) (*FileKVStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Path: dir, Op: "open", Err: err}
	}
	return &FileKVStore{dir: dir}, nil
}

// Dir returns the storage directory
func (fs *FileKVStore) Dir() string {
	return fs.dir
}

// KeyPath returns the file backing key
func (fs *FileKVStore) KeyPath(key string) string {
	return filepath.Join(fs.dir, url.PathEscape(key)+".json")
}

// Get returns the value for key and whether it exists
func (fs *FileKVStore) Get(key string) (string, bool, error) {
	path := fs.KeyPath(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Path: path, Op: "get", Err: err}
	}
	return string(data), true, nil
}

// Set stores value under key
func (fs *FileKVStore) Set(key, value string) error {
	path := fs.KeyPath(key)
	tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
	if err != nil {
		return &StorageError{Path: path, Op: "set", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "set", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "set", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "set", Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

// Remove deletes key; a missing key is not an error
func (fs *FileKVStore) Remove(key string) error {
	path := fs.KeyPath(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: path, Op: "remove", Err: err}
	}
	return nil
}

// Close is a no-op for the file backend
func (fs *FileKVStore) Close() error {
	return nil
}
