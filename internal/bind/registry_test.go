package bind

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/store"
)

const root = "/repo/.behavior"

var (
	dirX = filepath.Join(root, "v2026_01_01.feature-x")
	dirY = filepath.Join(root, "v2026_01_02.feature-y")
)

type staticBranch struct {
	branch string
	err    error
}

func (s staticBranch) CurrentBranch() (string, error) {
	return s.branch, s.err
}

func newTestRegistry(t *testing.T, current string, opts ...Option) (*Registry, *store.Memory) {
	t.Helper()
	fs := store.NewMemory()
	require.NoError(t, fs.MkdirAll(dirX))
	require.NoError(t, fs.MkdirAll(dirY))
	resolver := behavior.NewResolver(fs, root)
	return NewRegistry(fs, resolver, staticBranch{branch: current}, opts...), fs
}

func TestBind_CreatesFlag(t *testing.T) {
	defer SetTimeNow(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 678_900_000, time.UTC)
	})()

	r, fs := newTestRegistry(t, "feature/x", WithActor("tester"))

	result, err := r.Bind("feature/x", dirX)
	require.NoError(t, err)
	assert.False(t, result.AlreadyBound)
	assert.Equal(t, filepath.Join(dirX, ".bind", "feature.x.flag"), result.FlagPath)

	content, err := fs.ReadFile(result.FlagPath)
	require.NoError(t, err)

	var flag Flag
	require.NoError(t, yaml.Unmarshal(content, &flag))
	assert.Equal(t, Flag{Branch: "feature/x", BoundAt: "2026-01-02T03:04:05.678Z", BoundBy: "tester"}, flag)
}

func TestBind_FlagNames(t *testing.T) {
	r, _ := newTestRegistry(t, "")

	result, err := r.Bind("feature@v2#test", dirX)
	require.NoError(t, err)
	assert.Equal(t, "feature_v2_test.flag", filepath.Base(result.FlagPath))
}

func TestBind_SameDirIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t, "feature/x")

	_, err := r.Bind("feature/x", dirX)
	require.NoError(t, err)

	result, err := r.Bind("feature/x", dirX)
	require.NoError(t, err)
	assert.True(t, result.AlreadyBound)
}

func TestBind_Exclusive(t *testing.T) {
	r, _ := newTestRegistry(t, "feature/a")

	_, err := r.Bind("feature/a", dirX)
	require.NoError(t, err)

	_, err = r.Bind("feature/a", dirY)
	require.Error(t, err)
	assert.True(t, badreq.Is(err, badreq.KindConflict))
	assert.Contains(t, err.Error(), "v2026_01_01.feature-x")
	e, ok := badreq.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Hint, "behave bind del")

	q, err := r.Query("feature/a")
	require.NoError(t, err)
	assert.Equal(t, dirX, q.BehaviorDir)
	assert.Equal(t, []string{dirX}, q.Binds)
}

func TestBind_ProtectedBranches(t *testing.T) {
	r, _ := newTestRegistry(t, "main", WithProtectedBranches("develop"))

	for _, branch := range []string{"main", "master", "develop"} {
		t.Run(branch, func(t *testing.T) {
			_, err := r.Bind(branch, dirX)
			require.Error(t, err)
			assert.True(t, badreq.Is(err, badreq.KindInvalidInput))
		})
	}

	t.Run("current branch is protected too", func(t *testing.T) {
		_, err := r.Bind("", dirX)
		assert.True(t, badreq.Is(err, badreq.KindInvalidInput))
	})
}

func TestBind_MissingBehavior(t *testing.T) {
	r, _ := newTestRegistry(t, "feature/x")

	_, err := r.Bind("feature/x", filepath.Join(root, "v2026_09_09.ghost"))
	assert.True(t, badreq.Is(err, badreq.KindNotFound))
}

func TestQuery(t *testing.T) {
	r, fs := newTestRegistry(t, "feature/current")

	t.Run("unbound branch", func(t *testing.T) {
		q, err := r.Query("feature/none")
		require.NoError(t, err)
		assert.Empty(t, q.BehaviorDir)
		assert.Empty(t, q.Binds)
	})

	t.Run("defaults to current branch", func(t *testing.T) {
		_, err := r.Bind("feature/current", dirY)
		require.NoError(t, err)

		q, err := r.Query("")
		require.NoError(t, err)
		assert.Equal(t, "feature/current", q.Branch)
		assert.Equal(t, dirY, q.BehaviorDir)
	})

	t.Run("multiple binds leave behavior unset", func(t *testing.T) {
		for _, dir := range []string{dirX, dirY} {
			require.NoError(t, fs.MkdirAll(filepath.Join(dir, Dir)))
			require.NoError(t, fs.WriteFile(FlagPath(dir, "feature/dup"), []byte("branch: feature/dup\n")))
		}

		q, err := r.Query("feature/dup")
		require.NoError(t, err)
		assert.Empty(t, q.BehaviorDir)
		assert.Equal(t, []string{dirX, dirY}, q.Binds)

		_, err = r.Bind("feature/dup", dirX)
		assert.True(t, badreq.Is(err, badreq.KindAmbiguous))
	})
}

func TestQuery_BranchSourceFailure(t *testing.T) {
	fs := store.NewMemory()
	resolver := behavior.NewResolver(fs, root)
	r := NewRegistry(fs, resolver, staticBranch{err: errors.New("not a git repository")})

	_, err := r.Query("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
	assert.False(t, badreq.Is(err, badreq.KindNotFound), "branch lookup failures are not silent defaults")
}

func TestUnbind(t *testing.T) {
	r, fs := newTestRegistry(t, "feature/x")

	t.Run("never bound", func(t *testing.T) {
		result, err := r.Unbind("feature/x")
		require.NoError(t, err)
		assert.True(t, result.WasUnbound)
	})

	t.Run("removes the flag", func(t *testing.T) {
		bound, err := r.Bind("feature/x", dirX)
		require.NoError(t, err)

		result, err := r.Unbind("")
		require.NoError(t, err)
		assert.False(t, result.WasUnbound)
		assert.Equal(t, []string{bound.FlagPath}, result.Removed)

		exists, err := fs.Exists(bound.FlagPath)
		require.NoError(t, err)
		assert.False(t, exists)

		q, err := r.Query("feature/x")
		require.NoError(t, err)
		assert.Empty(t, q.Binds)
	})

	t.Run("rebinding elsewhere after unbind", func(t *testing.T) {
		_, err := r.Bind("feature/x", dirY)
		require.NoError(t, err)
	})
}

func TestList(t *testing.T) {
	r, fs := newTestRegistry(t, "")

	_, err := r.Bind("feature/x", dirX)
	require.NoError(t, err)
	_, err = r.Bind("feature@y", dirY)
	require.NoError(t, err)

	// A stray file in .bind is not a bind.
	require.NoError(t, fs.WriteFile(filepath.Join(dirY, Dir, "README"), []byte("hi")))

	bindings, err := r.List()
	require.NoError(t, err)
	require.Len(t, bindings, 2)

	assert.Equal(t, "feature/x", bindings[0].Branch)
	assert.Equal(t, "feature.x", bindings[0].Flattened)
	assert.Equal(t, dirX, bindings[0].BehaviorDir)

	assert.Equal(t, "feature@y", bindings[1].Branch)
	assert.Equal(t, "feature_y", bindings[1].Flattened)
	assert.Equal(t, "behave", bindings[1].BoundBy)
}
