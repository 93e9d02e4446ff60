package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// acquire serializes an operation on the working copy, within the process
// through the handle mutex and across processes through a lock file next to
// the cache directory. The lock file survives cache deletion during recovery.
func (h *Handle) acquire(ctx context.Context) (func(), error) {
	h.mu.Lock()

	if err := os.MkdirAll(filepath.Dir(h.lockPath), 0750); err != nil {
		h.mu.Unlock()
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	fileLock := flock.New(h.lockPath)
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		h.mu.Unlock()
		if err == nil {
			err = fmt.Errorf("lock not acquired")
		}
		return nil, fmt.Errorf("failed to lock cache %s: %w", h.LocalDir, err)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			slog.Warn("Failed to release cache lock", "path", h.lockPath, "error", err)
		}
		h.mu.Unlock()
	}, nil
}
