package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/targus/testutil"
)

func TestNewFileKVStore(t *testing.T) {
	dir := filepath.Join(testutil.CreateTempDir(t), "kv")
	fs, err := NewFileKVStore(dir)
	if err != nil {
		t.Fatalf("NewFileKVStore() error = %v", err)
	}
	if fs.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", fs.Dir(), dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("storage directory was not created: %v", err)
	}
}

func TestFileKVStore_KeyPath(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	fs, err := NewFileKVStore(dir)
	if err != nil {
		t.Fatalf("NewFileKVStore() error = %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"chatHistory", "chatHistory.json"},
		{"a/b", "a%2Fb.json"},
	}
	for _, tt := range tests {
		if got := fs.KeyPath(tt.key); got != filepath.Join(dir, tt.want) {
			t.Errorf("KeyPath(%q) = %q, want %q", tt.key, got, filepath.Join(dir, tt.want))
		}
	}
}

func TestFileKVStore_RoundTrip(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	fs, err := NewFileKVStore(dir)
	if err != nil {
		t.Fatalf("NewFileKVStore() error = %v", err)
	}

	if _, ok, err := fs.Get("chatHistory"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	for _, value := range []string{`{"first":[]}`, `{"second":[]}`} {
		if err := fs.Set("chatHistory", value); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, ok, err := fs.Get("chatHistory")
		if err != nil || !ok || got != value {
			t.Errorf("Get() = %q, %v, %v; want %q", got, ok, err, value)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}

	if err := fs.Remove("chatHistory"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := fs.Remove("chatHistory"); err != nil {
		t.Errorf("Remove() of missing key error = %v", err)
	}
	if _, ok, _ := fs.Get("chatHistory"); ok {
		t.Error("Get() after Remove() still found key")
	}
	if err := fs.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
