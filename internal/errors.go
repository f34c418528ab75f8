package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a chat message is blank after trimming
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoCollection is returned when sending without a selected collection
	ErrNoCollection = errors.New("please select a collection first")
)

// TransportError represents a request that never produced a response
type TransportError struct {
	Op  string // "upload", "chat", "collections", "delete", "health"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx response. Message is what the user sees.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// ChatRequestError is returned when the canonical chat request is rejected
type ChatRequestError struct {
	Status  int
	Message string
}

func (e *ChatRequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Chat request failed: %d", e.Status)
}

// AllFormatsFailedError is returned once every request variant was rejected
type AllFormatsFailedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *AllFormatsFailedError) Error() string {
	return fmt.Sprintf("All %s request formats failed", e.Op)
}

func (e *AllFormatsFailedError) Unwrap() error {
	return e.Last
}

// PersistenceParseError represents a corrupt persisted snapshot
type PersistenceParseError struct {
	Key string
	Err error
}

func (e *PersistenceParseError) Error() string {
	return fmt.Sprintf("parse error [%s]: %v", e.Key, e.Err)
}

func (e *PersistenceParseError) Unwrap() error {
	return e.Err
}

// StorageError represents errors accessing the local key/value store
type StorageError struct {
	Path string
	Op   string // "open", "get", "set", "remove"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
