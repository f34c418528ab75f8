package internal

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// UploadStatus is the lifecycle of one upload
type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// Uploader is the pair of transport mechanisms an upload can use
type Uploader interface {
	UploadFile(ctx context.Context, path string, onProgress func(percent float64)) (*ServerResponse, error)
	UploadFileFallback(ctx context.Context, path string) (*ServerResponse, error)
}

// UploadSession tracks a selected file through upload
type UploadSession struct {
	Path string
	Size int64

	mu         sync.Mutex
	progress   float64
	status     UploadStatus
	err        error
	response   *ServerResponse
	onProgress func(float64)
}

// NewUploadSession selects path for upload
func NewUploadSession(path string) (*UploadSession, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &UploadSession{
		Path:   path,
		Size:   info.Size(),
		status: UploadIdle,
	}, nil
}

// OnProgress registers a callback for every progress change
func (s *UploadSession) OnProgress(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

// Run uploads with the progress-reporting mechanism, falling back to the
// buffered one if it fails
func (s *UploadSession) Run(ctx context.Context, up Uploader) (*ServerResponse, error) {
	s.mu.Lock()
	s.status = UploadUploading
	s.err = nil
	s.response = nil
	s.mu.Unlock()
	s.setProgress(0)

	resp, err := up.UploadFile(ctx, s.Path, s.setProgress)
	if err != nil && ctx.Err() == nil {
		LogWarn("Upload with progress failed, trying fallback: %v", err)
		s.setProgress(50)
		resp, err = up.UploadFileFallback(ctx, s.Path)
	}

	if err != nil {
		failure := fmt.Errorf("Upload failed: %w", err)
		s.mu.Lock()
		s.status = UploadError
		s.err = failure
		s.mu.Unlock()
		s.setProgress(0)
		return nil, failure
	}

	s.setProgress(100)
	s.mu.Lock()
	s.status = UploadSuccess
	s.response = resp
	s.mu.Unlock()
	return resp, nil
}

// Reset returns the session to idle
func (s *UploadSession) Reset() {
	s.mu.Lock()
	s.status = UploadIdle
	s.err = nil
	s.response = nil
	s.mu.Unlock()
	s.setProgress(0)
}

// Progress returns the percentage sent, 0 to 100
func (s *UploadSession) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Status returns the lifecycle state
func (s *UploadSession) Status() UploadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the retained failure, if any
func (s *UploadSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Response returns the server response of a successful upload
func (s *UploadSession) Response() *ServerResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

// Done reports whether the upload succeeded
func (s *UploadSession) Done() bool {
	return s.Status() == UploadSuccess
}

func (s *UploadSession) setProgress(p float64) {
	p = clampPercent(p)
	s.mu.Lock()
	s.progress = p
	fn := s.onProgress
	s.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}
