package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/targus/internal/mockbackend"
)

func TestServeMockCommand_InvalidShape(t *testing.T) {
	env := newTestEnv(t, mockbackend.Options{})

	_, _, err := env.run(t, "", "serve-mock", "--shape", "tree", "--addr", "127.0.0.1:0")
	if err == nil || !strings.Contains(err.Error(), "unsupported shape") {
		t.Errorf("error = %v, want unsupported shape", err)
	}
}

func TestServeMockCommand_Flags(t *testing.T) {
	tests := []struct {
		flag string
		def  string
	}{
		{flag: "addr", def: ":8000"},
		{flag: "upload-field", def: "files"},
		{flag: "chat-key", def: "query"},
		{flag: "shape", def: "array"},
		{flag: "collections", def: "[documents]"},
	}

	for _, tt := range tests {
		f := serveMockCmd.Flag(tt.flag)
		if f == nil {
			t.Errorf("serve-mock should have --%s", tt.flag)
			continue
		}
		if f.DefValue != tt.def {
			t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.def)
		}
	}
}
