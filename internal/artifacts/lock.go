package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/huangsam/pokestats/internal/contract"
)

// lockRetryDelay is how often a waiting writer retries the lock.
const lockRetryDelay = 50 * time.Millisecond

// Lock is an exclusive hold on an artifact directory.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes an OS advisory lock on the lock file in dir. The kernel
// drops the lock when its holder exits, so a file left behind by a crashed run
// is simply locked again. With wait <= 0 a held lock fails at once; otherwise
// the call retries until wait elapses or ctx is done.
func AcquireLock(ctx context.Context, dir string, wait time.Duration) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &contract.PersistenceError{Op: "mkdir", Path: dir, Cause: err}
	}
	path := filepath.Join(dir, LockFile)
	fl := flock.New(path)

	var (
		locked bool
		err    error
	)
	if wait <= 0 {
		locked, err = fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		locked, err = fl.TryLockContext(waitCtx, lockRetryDelay)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		_ = fl.Close()
		return nil, &contract.PersistenceError{Op: "lock", Path: path, Cause: err}
	}
	if !locked {
		_ = fl.Close()
		return nil, &contract.LockedError{Path: path, Holder: readHolder(path)}
	}

	// The holder line is informational; the advisory lock is the source of truth
	host, _ := os.Hostname()
	note := fmt.Sprintf("pid %d on %s since %s\n", os.Getpid(), host, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(note), 0o644); err != nil {
		_ = fl.Unlock()
		_ = fl.Close()
		return nil, &contract.PersistenceError{Op: "lock", Path: path, Cause: err}
	}
	return &Lock{fl: fl}, nil
}

// readHolder returns the holder line written by the current lock owner.
func readHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "unknown holder"
	}
	return strings.TrimSpace(string(data))
}

// Release clears the holder line and drops the lock. The file itself stays so
// that every writer locks the same inode. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	fl := l.fl
	l.fl = nil
	truncErr := os.Truncate(fl.Path(), 0)
	if err := errors.Join(truncErr, fl.Unlock(), fl.Close()); err != nil {
		return &contract.PersistenceError{Op: "unlock", Path: fl.Path(), Cause: err}
	}
	return nil
}
