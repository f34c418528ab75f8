package internal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeHealthChecker struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *fakeHealthChecker) CheckHealth(ctx context.Context) (Payload, error) {
	f.mu.Lock()
	f.calls++
	body, err := f.body, f.err
	f.mu.Unlock()
	if err != nil {
		return Payload{}, err
	}
	return DecodePayload([]byte(body)), nil
}

func (f *fakeHealthChecker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestHealthState_String(t *testing.T) {
	tests := []struct {
		state HealthState
		want  string
	}{
		{HealthChecking, "checking"},
		{HealthHealthy, "healthy"},
		{HealthUnhealthy, "unhealthy"},
		{HealthState(9), "HealthState(9)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHealthPoller_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		wantState HealthState
		wantErr   bool
	}{
		{name: "success without signal", body: `{"version":"1"}`, wantState: HealthHealthy},
		{name: "explicit healthy", body: `{"status":"healthy"}`, wantState: HealthHealthy},
		{name: "explicit unhealthy", body: `{"healthy":false}`, wantState: HealthUnhealthy},
		{name: "non json body", body: `pong`, wantState: HealthHealthy},
		{
			name:      "transport failure",
			err:       &TransportError{Op: "health", URL: "http://x/health", Err: errors.New("connection refused")},
			wantState: HealthUnhealthy,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeHealthChecker{body: tt.body, err: tt.err}
			p := NewHealthPoller(checker, time.Minute, nil)
			fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
			p.now = func() time.Time { return fixed }

			if p.Status().State != HealthChecking {
				t.Fatalf("initial state = %s, want checking", p.Status().State)
			}

			var seen []HealthState
			p.OnChange(func(s HealthStatus) { seen = append(seen, s.State) })

			got := p.Check(context.Background())
			if got.State != tt.wantState {
				t.Errorf("Check() state = %s, want %s", got.State, tt.wantState)
			}
			if (got.Err != nil) != tt.wantErr {
				t.Errorf("Check() err = %v, wantErr %v", got.Err, tt.wantErr)
			}
			if tt.wantErr && got.ErrorText() == "" {
				t.Error("ErrorText() empty for failed check")
			}
			if !got.LastChecked.Equal(fixed) {
				t.Errorf("LastChecked = %v, want %v", got.LastChecked, fixed)
			}
			if len(seen) != 2 || seen[0] != HealthChecking || seen[1] != tt.wantState {
				t.Errorf("transitions = %v, want [checking %s]", seen, tt.wantState)
			}
		})
	}
}

func TestHealthPoller_RecoversAfterFailure(t *testing.T) {
	checker := &fakeHealthChecker{err: errors.New("down")}
	p := NewHealthPoller(checker, time.Minute, nil)

	if s := p.Check(context.Background()); s.State != HealthUnhealthy {
		t.Fatalf("first Check() = %s, want unhealthy", s.State)
	}

	checker.mu.Lock()
	checker.err = nil
	checker.body = `{"status":"healthy"}`
	checker.mu.Unlock()

	s := p.Check(context.Background())
	if s.State != HealthHealthy || s.Err != nil {
		t.Errorf("second Check() = %+v, want healthy without error", s)
	}
}

func TestHealthPoller_StartStop(t *testing.T) {
	checker := &fakeHealthChecker{body: `{}`}
	p := NewHealthPoller(checker, time.Second, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if checker.Calls() != 1 {
		t.Errorf("calls right after Start() = %d, want 1", checker.Calls())
	}

	time.Sleep(1500 * time.Millisecond)
	p.Stop()
	p.Stop()

	calls := checker.Calls()
	if calls < 2 {
		t.Errorf("calls after one interval = %d, want at least 2", calls)
	}
	time.Sleep(1200 * time.Millisecond)
	if checker.Calls() != calls {
		t.Errorf("poller kept checking after Stop(): %d -> %d", calls, checker.Calls())
	}
	if p.Status().State != HealthHealthy {
		t.Errorf("state after Stop() = %s, want healthy", p.Status().State)
	}
}

func TestHealthPoller_SharedScheduler(t *testing.T) {
	sched := NewScheduler()
	p := NewHealthPoller(&fakeHealthChecker{body: `{}`}, time.Second, sched)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sched.Len() != 1 {
		t.Errorf("scheduler jobs = %d, want 1", sched.Len())
	}
	p.Stop()
	if sched.Len() != 0 {
		t.Errorf("scheduler jobs after Stop() = %d, want 0", sched.Len())
	}
	sched.Stop()
}

func TestHealthStatus_FormatLastChecked(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		last time.Time
		want string
	}{
		{name: "never", want: "never"},
		{name: "seconds", last: now.Add(-42 * time.Second), want: "42s ago"},
		{name: "future clamps", last: now.Add(time.Second), want: "0s ago"},
		{name: "minutes", last: now.Add(-5*time.Minute - 10*time.Second), want: "5m ago"},
		{name: "hours", last: now.Add(-2 * time.Hour), want: now.Add(-2 * time.Hour).Local().Format("15:04:05")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := HealthStatus{LastChecked: tt.last}
			if got := s.FormatLastChecked(now); got != tt.want {
				t.Errorf("FormatLastChecked() = %q, want %q", got, tt.want)
			}
		})
	}
}
