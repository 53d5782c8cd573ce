// Package scheduler runs due scheduled reports on a cron loop.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// CheckSpec is the cron spec of the due-report check: second 0 of every
// minute.
const CheckSpec = "0 * * * * *"

// DueRunner runs every scheduled report that is due.
type DueRunner interface {
	RunDue(ctx context.Context) ([]*report.Result, error)
}

// Scheduler checks for due scheduled reports every minute.
type Scheduler struct {
	cron   *cron.Cron
	runner DueRunner

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	lastCheck time.Time
	runs      int
	failures  int
}

// NewScheduler creates a scheduler driving runner.
func NewScheduler(runner DueRunner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
	}
}

// Start registers the minute check and starts the cron loop. Report runs
// receive a context derived from ctx that is canceled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.lastCheck = time.Now()
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(CheckSpec, s.check); err != nil {
		return fmt.Errorf("failed to add report check: %w", err)
	}
	s.cron.Start()
	logging.Info("scheduler started", logging.KeyOperation, "start")
	return nil
}

// Stop cancels in-flight runs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.Info("scheduler stopped", logging.KeyOperation, "stop")
}

// RunOnce runs the due reports immediately.
func (s *Scheduler) RunOnce(ctx context.Context) ([]*report.Result, error) {
	results, err := s.runner.RunDue(ctx)

	s.mu.Lock()
	s.lastCheck = time.Now()
	s.runs += len(results)
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()
	return results, err
}

func (s *Scheduler) check() {
	s.mu.Lock()
	ctx := s.ctx
	elapsed := time.Since(s.lastCheck)
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	// After a sleep the missed reports are still due and run now.
	if elapsed > time.Hour {
		logging.Info("catching up after pause", "elapsed", elapsed.Round(time.Second).String())
	}

	results, err := s.RunOnce(ctx)
	if err != nil {
		logging.Error("report check failed", logging.KeyError, err)
	}
	if len(results) > 0 {
		logging.Info("scheduled reports ran", logging.KeyCount, len(results))
	} else {
		logging.DebugLog("no reports due")
	}
}

// Stats returns how many reports ran, how many checks failed and when the
// last check happened.
func (s *Scheduler) Stats() (runs, failures int, lastCheck time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.failures, s.lastCheck
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled run time for any job.
func (s *Scheduler) NextRun() time.Time {
	entries := s.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
