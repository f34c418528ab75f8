package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestTransportError(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := &TransportError{Op: "upload", URL: "http://localhost:8000/upload", Err: originalErr}

	msg := err.Error()
	if !strings.Contains(msg, "network error") {
		t.Errorf("TransportError.Error() should contain 'network error', got: %q", msg)
	}
	if !strings.Contains(msg, "/upload") {
		t.Errorf("TransportError.Error() should contain URL, got: %q", msg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("TransportError.Unwrap() should return original error")
	}
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  *HTTPError
		want string
	}{
		{"extracted message", &HTTPError{Op: "upload", Status: 422, Message: "Field required"}, "Field required"},
		{"status only", &HTTPError{Op: "collections", Status: 500}, "HTTP error! status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("HTTPError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatRequestError(t *testing.T) {
	if got := (&ChatRequestError{Status: 400}).Error(); got != "Chat request failed: 400" {
		t.Errorf("ChatRequestError.Error() = %q", got)
	}
	if got := (&ChatRequestError{Status: 400, Message: "bad query"}).Error(); got != "bad query" {
		t.Errorf("ChatRequestError.Error() = %q", got)
	}
}

func TestAllFormatsFailedError(t *testing.T) {
	last := &HTTPError{Status: 422}
	err := &AllFormatsFailedError{Op: "chat", Attempts: 6, Last: last}

	if got := err.Error(); got != "All chat request formats failed" {
		t.Errorf("AllFormatsFailedError.Error() = %q", got)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 422 {
		t.Error("AllFormatsFailedError should unwrap to the last attempt's error")
	}
}

func TestPersistenceParseError(t *testing.T) {
	originalErr := errors.New("invalid character")
	err := &PersistenceParseError{Key: "chatHistory", Err: originalErr}

	msg := err.Error()
	if !strings.Contains(msg, "parse error") || !strings.Contains(msg, "chatHistory") {
		t.Errorf("PersistenceParseError.Error() = %q", msg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("PersistenceParseError.Unwrap() should return original error")
	}
}

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{Path: "/test/path", Op: "open", Err: originalErr}

	msg := err.Error()
	if !strings.Contains(msg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", msg)
	}
	if !strings.Contains(msg, "/test/path") {
		t.Errorf("StorageError.Error() should contain path, got: %q", msg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{Format: "jsonl", Path: "/output/file.jsonl", Err: originalErr}

	msg := err.Error()
	if !strings.Contains(msg, "export error") || !strings.Contains(msg, "jsonl") {
		t.Errorf("ExportError.Error() = %q", msg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
