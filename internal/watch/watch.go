// Package watch blocks until a file appears in a behavior directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrTimeout is returned when the file does not appear in time.
var ErrTimeout = errors.New("timeout waiting for file")

// pollInterval backs up filesystem events on platforms or mounts where
// they are not delivered.
var pollInterval = 500 * time.Millisecond

// ForFile waits until path exists and returns immediately if it already
// does. A zero timeout waits until ctx is done.
func ForFile(ctx context.Context, path string, timeout time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// Checked after the watch is armed so a file created in between is not missed.
	if exists(path) {
		return nil
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timeoutCh:
			return fmt.Errorf("%w %s after %v", ErrTimeout, filepath.Base(path), timeout)

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher closed unexpectedly")
			}
			logger.Debug("watch event", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && filepath.Clean(event.Name) == filepath.Clean(path) {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed unexpectedly")
			}
			logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			if exists(path) {
				return nil
			}
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
