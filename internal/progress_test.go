package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Testing",
			fn:      func() error { return nil },
		},
		{
			name:    "function with error",
			message: "Testing error",
			fn:      func() error { return errors.New("test error") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowSpinner(t *testing.T) {
	var buf bytes.Buffer
	err := showSpinner(context.Background(), &buf, "Working", func() error {
		time.Sleep(150 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showSpinner() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Working") {
		t.Errorf("spinner output %q missing message", buf.String())
	}
}

func TestShowSpinner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := showSpinner(ctx, &buf, "Slow", func() error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("showSpinner() error = %v, want deadline exceeded", err)
	}
}

func TestProgressBar_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "Uploading")

	if bar.Percent() != -1 {
		t.Errorf("Percent() before update = %d, want -1", bar.Percent())
	}

	for _, p := range []float64{0, 3, 9, 12, 50, 55, 150} {
		bar.Update(p)
	}
	bar.Done()
	bar.Update(20)

	want := "Uploading 0%\nUploading 12%\nUploading 50%\nUploading 100%\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if bar.Percent() != 100 {
		t.Errorf("Percent() = %d, want 100", bar.Percent())
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{42.5, 42.5},
		{101, 100},
	}
	for _, tt := range tests {
		if got := clampPercent(tt.in); got != tt.want {
			t.Errorf("clampPercent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFprintHelpers(t *testing.T) {
	var buf bytes.Buffer
	FprintSuccess(&buf, "done")
	FprintInfo(&buf, "note")
	if buf.String() != "done\nnote\n" {
		t.Errorf("output = %q", buf.String())
	}
}
