package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultHealthInterval is how often the poller checks the backend
const DefaultHealthInterval = 30 * time.Second

// HealthState is the backend status as last observed
type HealthState int

const (
	HealthChecking HealthState = iota
	HealthHealthy
	HealthUnhealthy
)

func (s HealthState) String() string {
	switch s {
	case HealthChecking:
		return "checking"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return fmt.Sprintf("HealthState(%d)", int(s))
	}
}

// HealthStatus is a snapshot of the poller
type HealthStatus struct {
	State       HealthState
	Err         error
	LastChecked time.Time
}

// ErrorText returns the retained error message, or ""
func (s HealthStatus) ErrorText() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// FormatLastChecked renders LastChecked relative to now
func (s HealthStatus) FormatLastChecked(now time.Time) string {
	if s.LastChecked.IsZero() {
		return "never"
	}
	diff := now.Sub(s.LastChecked)
	if diff < 0 {
		diff = 0
	}
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff/time.Second))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	default:
		return s.LastChecked.Local().Format("15:04:05")
	}
}

// HealthChecker is the transport call the poller drives
type HealthChecker interface {
	CheckHealth(ctx context.Context) (Payload, error)
}

// HealthPoller tracks backend health, on demand and on a schedule
type HealthPoller struct {
	checker  HealthChecker
	interval time.Duration

	mu       sync.Mutex
	status   HealthStatus
	onChange func(HealthStatus)

	scheduler *Scheduler
	ownsSched bool
	entry     cron.EntryID
	scheduled bool

	now func() time.Time
}

// NewHealthPoller creates a poller in the checking state. A nil scheduler
// gives the poller one of its own.
func NewHealthPoller(checker HealthChecker, interval time.Duration, scheduler *Scheduler) *HealthPoller {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	p := &HealthPoller{
		checker:   checker,
		interval:  interval,
		status:    HealthStatus{State: HealthChecking},
		scheduler: scheduler,
		now:       time.Now,
	}
	if p.scheduler == nil {
		p.scheduler = NewScheduler()
		p.ownsSched = true
	}
	return p
}

// OnChange registers a callback receiving every status transition
func (p *HealthPoller) OnChange(fn func(HealthStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Status returns the current snapshot
func (p *HealthPoller) Status() HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Check runs one health check and returns the resulting status
func (p *HealthPoller) Check(ctx context.Context) HealthStatus {
	p.set(HealthStatus{State: HealthChecking, LastChecked: p.Status().LastChecked})

	payload, err := p.checker.CheckHealth(ctx)
	next := HealthStatus{LastChecked: p.now()}
	if err != nil {
		next.State = HealthUnhealthy
		next.Err = err
		LogDebug("Health check failed: %v", err)
	} else {
		next.State = InterpretHealth(payload)
		LogDebug("Health check: %s", next.State)
	}

	p.set(next)
	return next
}

// Start checks immediately, then every interval until Stop or ctx is done
func (p *HealthPoller) Start(ctx context.Context) error {
	p.Check(ctx)

	id, err := p.scheduler.Every(p.interval, func() {
		if ctx.Err() != nil {
			return
		}
		p.Check(ctx)
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.entry = id
	p.scheduled = true
	p.mu.Unlock()

	p.scheduler.Start()
	return nil
}

// Stop ends the schedule; the last status is kept
func (p *HealthPoller) Stop() {
	p.mu.Lock()
	scheduled := p.scheduled
	p.scheduled = false
	p.mu.Unlock()

	if !scheduled {
		return
	}
	p.scheduler.Remove(p.entry)
	if p.ownsSched {
		p.scheduler.Stop()
	}
}

func (p *HealthPoller) set(s HealthStatus) {
	p.mu.Lock()
	p.status = s
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
