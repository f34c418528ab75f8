package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	barFillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn behind a spinner when stderr is a terminal
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	return showSpinner(ctx, os.Stderr, message, fn)
}

func showSpinner(ctx context.Context, w io.Writer, message string, fn func() error) error {
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerChars[i%len(spinnerChars)]), message)
				i++
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-spinnerDone
		if err != nil {
			fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		close(stop)
		<-spinnerDone
		fmt.Fprintln(w)
		return ctx.Err()
	}
}

// ProgressBar renders a single-line percentage bar. On a non-terminal
// writer it prints one line per whole-ten-percent step instead.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	width   int
	tty     bool
	lastPct int
	done    bool
}

// NewProgressBar creates a bar writing to w
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	return &ProgressBar{
		w:       w,
		label:   label,
		width:   30,
		tty:     isTerminal(w),
		lastPct: -1,
	}
}

// Update sets progress to percent, clamped to [0, 100]
func (b *ProgressBar) Update(percent float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}

	pct := int(clampPercent(percent))
	if pct == b.lastPct {
		return
	}
	if !b.tty {
		if pct/10 == b.lastPct/10 && b.lastPct >= 0 {
			b.lastPct = pct
			return
		}
		b.lastPct = pct
		fmt.Fprintf(b.w, "%s %d%%\n", b.label, pct)
		return
	}

	b.lastPct = pct
	filled := b.width * pct / 100
	bar := barFillStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", b.width-filled)
	fmt.Fprintf(b.w, "\r%s %s %3d%%", b.label, bar, pct)
}

// Percent returns the last rendered percentage, -1 before the first update
func (b *ProgressBar) Percent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPct
}

// Done finishes the bar line
func (b *ProgressBar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true
	if b.tty {
		fmt.Fprintln(b.w)
	}
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	FprintSuccess(os.Stdout, message)
}

// FprintSuccess prints a success message to w
func FprintSuccess(w io.Writer, message string) {
	if isTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Fprintln(w, message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	FprintInfo(os.Stdout, message)
}

// FprintInfo prints an info message to w
func FprintInfo(w io.Writer, message string) {
	if isTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Fprintln(w, message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}

// ErrorText styles text the way error output is styled
func ErrorText(s string) string {
	return errorStyle.Render(s)
}

// SuccessText styles text the way success output is styled
func SuccessText(s string) string {
	return successStyle.Render(s)
}

// WarningText styles text the way warnings are styled
func WarningText(s string) string {
	return warningStyle.Render(s)
}

// AccentText styles text with the progress accent color
func AccentText(s string) string {
	return progressStyle.Render(s)
}
