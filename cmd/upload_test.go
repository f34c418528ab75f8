package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/targus/internal/mockbackend"
	"github.com/iksnae/targus/testutil"
)

func TestUploadCommand(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{name: "first field accepted", field: "files"},
		{name: "third field accepted", field: "upload_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, mockbackend.Options{UploadField: tt.field})
			path := testutil.WriteTempFile(t, "handbook.md", []byte("# Handbook\n"))

			stdout, stderr, err := env.run(t, "", "upload", path)
			if err != nil {
				t.Fatalf("upload failed: %v (stderr %q)", err, stderr)
			}
			if !strings.Contains(stdout, "File uploaded successfully") {
				t.Errorf("stdout = %q, want success line", stdout)
			}
			if !strings.Contains(stdout, "documents") {
				t.Errorf("stdout = %q, want collection name", stdout)
			}
			if !strings.Contains(stderr, "100%") {
				t.Errorf("stderr = %q, want progress to reach 100%%", stderr)
			}

			col, ok := env.backend.Collection("documents")
			if !ok || len(col.Files) != 1 || col.Files[0] != "handbook.md" {
				t.Errorf("backend collection = %+v, want handbook.md stored", col)
			}
		})
	}
}

func TestUploadCommand_Errors(t *testing.T) {
	env := newTestEnv(t, mockbackend.Options{UploadField: "document"})
	path := testutil.WriteTempFile(t, "notes.txt", []byte("notes"))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing file", args: []string{"upload", filepath.Join(env.dir, "missing.pdf")}},
		{name: "no argument", args: []string{"upload"}},
		{name: "no field accepted", args: []string{"upload", path}, wantErr: "Upload failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
