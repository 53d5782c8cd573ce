package scheduler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

// ErrWatcherRunning is returned by Acquire when another live process holds
// the lock.
var ErrWatcherRunning = errors.NewUserError("another scheduler is already running",
	"Stop the other 'creatorbook schedule watch' first, or delete the lock file if it is stale.")

// Lock is a PID file that keeps two watchers from running the same
// scheduled reports.
type Lock struct {
	path string
}

// DefaultLockPath returns the lock file location in the user state directory.
func DefaultLockPath() string {
	return filepath.Join(xdg.StateHome, storage.AppName, "scheduler.pid")
}

// NewLock creates a lock at path.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire writes the current PID. A lock left behind by a process that is
// no longer alive is taken over.
func (l *Lock) Acquire() error {
	if pid := l.Holder(); pid != 0 && pid != os.Getpid() {
		return ErrWatcherRunning
	}
	return storage.SafeWrite(l.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// Release removes the lock if this process holds it.
func (l *Lock) Release() error {
	pid, err := l.read()
	if err != nil || pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.NewSystemError("failed to remove scheduler lock", err)
	}
	return nil
}

// Holder returns the PID of the live process holding the lock, or 0.
func (l *Lock) Holder() int {
	pid, err := l.read()
	if err != nil || !processAlive(pid) {
		return 0
	}
	return pid
}

func (l *Lock) read() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 probes for existence.
	return p.Signal(syscall.Signal(0)) == nil
}
