package internal

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic jobs. Each job is its own cron entry and a slow run
// is skipped rather than stacked.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler creates a stopped scheduler
func NewScheduler() *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Every registers fn to run every interval. Intervals below one second are
// rounded up to one second.
func (s *Scheduler) Every(interval time.Duration, fn func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("invalid interval: %s", interval)
	}
	id, err := s.cron.AddFunc("@every "+interval.String(), fn)
	if err != nil {
		return 0, fmt.Errorf("failed to add schedule: %w", err)
	}
	LogDebug("Scheduled job %d every %s", id, interval)
	return id, nil
}

// Remove unregisters a job
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background; calling it twice is a no-op
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

// cronLogger routes cron's logging through the package logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	LogDebug("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	LogError("cron: %s: %v %v", msg, err, keysAndValues)
}
