package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// OpLock serializes core operations across processes. Queue reconciliation
// issues position-based mutations that are only valid while nobody else is
// mutating the same queue, so every command touching the cache or the queue
// holds this lock for its whole duration.
type OpLock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock file next to the database, without blocking.
// Returns ErrLocked when another euphony process holds it.
func AcquireLock(dbPath string) (*OpLock, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, ".euphony.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &OpLock{fl: fl}, nil
}

// Release drops the lock. Safe to call once per acquired lock.
func (l *OpLock) Release() error {
	return l.fl.Unlock()
}
