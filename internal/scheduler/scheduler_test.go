package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/creatorbook/internal/report"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	results []*report.Result
	err     error
	ctx     context.Context
}

func (f *fakeRunner) RunDue(ctx context.Context) ([]*report.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ctx = ctx
	return f.results, f.err
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(&fakeRunner{})
	assert.NotNil(t, s)
	assert.NotNil(t, s.cron)
}

func TestSchedulerStartStop(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner)

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.Entries(), 1)
	assert.False(t, s.NextRun().IsZero())

	s.Stop()
}

func TestSchedulerStopCancelsRunContext(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner)
	require.NoError(t, s.Start(context.Background()))

	s.check()
	s.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.NotNil(t, runner.ctx)
	assert.ErrorIs(t, runner.ctx.Err(), context.Canceled)
}

func TestRunOnce(t *testing.T) {
	t.Run("counts_runs", func(t *testing.T) {
		runner := &fakeRunner{results: []*report.Result{{Path: "a.csv"}, {Path: "b.csv"}}}
		s := NewScheduler(runner)

		results, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Len(t, results, 2)

		runs, failures, last := s.Stats()
		assert.Equal(t, 2, runs)
		assert.Equal(t, 0, failures)
		assert.WithinDuration(t, time.Now(), last, time.Minute)
	})

	t.Run("counts_failures", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("boom")}
		s := NewScheduler(runner)

		_, err := s.RunOnce(context.Background())
		assert.Error(t, err)
		s.check()

		_, failures, _ := s.Stats()
		assert.Equal(t, 2, failures)
		assert.Equal(t, 2, runner.calls)
	})
}

func TestSchedulerNextRunEmpty(t *testing.T) {
	s := NewScheduler(&fakeRunner{})
	assert.True(t, s.NextRun().IsZero())
}

func TestLock(t *testing.T) {
	t.Run("acquire_and_release", func(t *testing.T) {
		l := NewLock(filepath.Join(t.TempDir(), "state", "scheduler.pid"))
		require.NoError(t, l.Acquire())
		assert.Equal(t, os.Getpid(), l.Holder())

		require.NoError(t, l.Release())
		assert.Zero(t, l.Holder())
		assert.NoFileExists(t, l.Path())
	})

	t.Run("held_by_live_process", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scheduler.pid")
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

		err := NewLock(path).Acquire()
		assert.ErrorIs(t, err, ErrWatcherRunning)
	})

	t.Run("stale_lock_taken_over", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scheduler.pid")
		require.NoError(t, os.WriteFile(path, []byte("99999999"), 0o600))

		l := NewLock(path)
		require.NoError(t, l.Acquire())
		assert.Equal(t, os.Getpid(), l.Holder())
	})

	t.Run("release_ignores_other_holder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scheduler.pid")
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

		require.NoError(t, NewLock(path).Release())
		assert.FileExists(t, path)
	})
}
