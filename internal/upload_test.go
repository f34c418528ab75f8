package internal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/targus/testutil"
)

type fakeUploader struct {
	primaryErr   error
	fallbackErr  error
	steps        []float64
	primaryCalls int
	fallbackCall int
}

func (f *fakeUploader) UploadFile(ctx context.Context, path string, onProgress func(float64)) (*ServerResponse, error) {
	f.primaryCalls++
	for _, p := range f.steps {
		onProgress(p)
	}
	if f.primaryErr != nil {
		return nil, f.primaryErr
	}
	return &ServerResponse{Status: 200, Payload: DecodePayload([]byte(`{"via":"primary"}`))}, nil
}

func (f *fakeUploader) UploadFileFallback(ctx context.Context, path string) (*ServerResponse, error) {
	f.fallbackCall++
	if f.fallbackErr != nil {
		return nil, f.fallbackErr
	}
	return &ServerResponse{Status: 200, Payload: DecodePayload([]byte(`{"via":"fallback"}`))}, nil
}

func TestNewUploadSession(t *testing.T) {
	path := testutil.WriteTempFile(t, "notes.txt", []byte("hello world"))
	s, err := NewUploadSession(path)
	if err != nil {
		t.Fatalf("NewUploadSession() error = %v", err)
	}
	if s.Size != 11 || s.Status() != UploadIdle || s.Progress() != 0 {
		t.Errorf("new session = size %d, status %s, progress %v", s.Size, s.Status(), s.Progress())
	}

	if _, err := NewUploadSession(path + ".missing"); err == nil {
		t.Error("NewUploadSession() on missing file returned nil error")
	}
	if _, err := NewUploadSession(testutil.CreateTempDir(t)); err == nil {
		t.Error("NewUploadSession() on directory returned nil error")
	}
}

func TestUploadSession_Run(t *testing.T) {
	tests := []struct {
		name         string
		up           *fakeUploader
		wantStatus   UploadStatus
		wantVia      string
		wantFallback int
		wantProgress []float64
	}{
		{
			name:         "primary succeeds",
			up:           &fakeUploader{steps: []float64{25, 75, 100}},
			wantStatus:   UploadSuccess,
			wantVia:      "primary",
			wantProgress: []float64{0, 25, 75, 100, 100},
		},
		{
			name:         "fallback after primary failure",
			up:           &fakeUploader{steps: []float64{10}, primaryErr: errors.New("field rejected")},
			wantStatus:   UploadSuccess,
			wantVia:      "fallback",
			wantFallback: 1,
			wantProgress: []float64{0, 10, 50, 100},
		},
		{
			name:         "both fail",
			up:           &fakeUploader{primaryErr: errors.New("a"), fallbackErr: &HTTPError{Status: 413, Message: "File too large"}},
			wantStatus:   UploadError,
			wantFallback: 1,
			wantProgress: []float64{0, 50, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewUploadSession(testutil.WriteTempFile(t, "f.pdf", []byte("%PDF")))
			if err != nil {
				t.Fatalf("NewUploadSession() error = %v", err)
			}
			var progress []float64
			s.OnProgress(func(p float64) { progress = append(progress, p) })

			resp, err := s.Run(context.Background(), tt.up)
			if s.Status() != tt.wantStatus {
				t.Errorf("Status() = %s, want %s", s.Status(), tt.wantStatus)
			}
			if tt.up.fallbackCall != tt.wantFallback {
				t.Errorf("fallback calls = %d, want %d", tt.up.fallbackCall, tt.wantFallback)
			}
			if len(progress) != len(tt.wantProgress) {
				t.Fatalf("progress = %v, want %v", progress, tt.wantProgress)
			}
			for i := range progress {
				if progress[i] != tt.wantProgress[i] {
					t.Errorf("progress = %v, want %v", progress, tt.wantProgress)
					break
				}
			}

			if tt.wantStatus == UploadError {
				if err == nil || !strings.HasPrefix(err.Error(), "Upload failed: ") {
					t.Errorf("Run() error = %v, want Upload failed prefix", err)
				}
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || httpErr.Status != 413 {
					t.Errorf("Run() error does not wrap the last failure: %v", err)
				}
				if s.Err() == nil || s.Done() {
					t.Error("failed session should retain error and not be done")
				}
				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if via, _ := resp.Payload.String("via"); via != tt.wantVia {
				t.Errorf("response via = %q, want %q", via, tt.wantVia)
			}
			if !s.Done() || s.Response() != resp {
				t.Error("successful session should be done with response retained")
			}
		})
	}
}

func TestUploadSession_Reset(t *testing.T) {
	s, err := NewUploadSession(testutil.WriteTempFile(t, "f.txt", []byte("x")))
	if err != nil {
		t.Fatalf("NewUploadSession() error = %v", err)
	}
	if _, err := s.Run(context.Background(), &fakeUploader{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s.Reset()
	if s.Status() != UploadIdle || s.Progress() != 0 || s.Response() != nil {
		t.Errorf("after Reset: status %s, progress %v", s.Status(), s.Progress())
	}
}

func TestUploadSession_CancelledSkipsFallback(t *testing.T) {
	s, err := NewUploadSession(testutil.WriteTempFile(t, "f.txt", []byte("x")))
	if err != nil {
		t.Fatalf("NewUploadSession() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	up := &fakeUploader{primaryErr: context.Canceled}
	if _, err := s.Run(ctx, up); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if up.fallbackCall != 0 {
		t.Errorf("fallback called %d times after cancellation", up.fallbackCall)
	}
}
