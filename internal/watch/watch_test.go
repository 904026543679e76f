package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedbackFile = "0.wish.md.[feedback].v1.[given].by_human.md"

func TestForFile_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, feedbackFile)
	require.NoError(t, os.WriteFile(path, []byte("done"), 0644))

	start := time.Now()
	require.NoError(t, ForFile(context.Background(), path, time.Second, nil))
	assert.Less(t, time.Since(start), time.Second)
}

func TestForFile_AppearsLater(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, feedbackFile)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "unrelated.md"), []byte("noise"), 0644)
		_ = os.WriteFile(path, []byte("done"), 0644)
	}()

	require.NoError(t, ForFile(context.Background(), path, 5*time.Second, nil))
}

func TestForFile_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), feedbackFile)

	err := ForFile(context.Background(), path, 200*time.Millisecond, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestForFile_ContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), feedbackFile)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := ForFile(ctx, path, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", feedbackFile)

	err := ForFile(context.Background(), path, time.Second, nil)
	assert.Error(t, err)
}
