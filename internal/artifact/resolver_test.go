package artifact

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/store"
)

const dir = "/repo/.behavior/v2026_01_01.test-feature"

func seed(t *testing.T, files ...string) *store.Memory {
	t.Helper()
	fs := store.NewMemory()
	require.NoError(t, fs.MkdirAll(dir))
	for _, f := range files {
		require.NoError(t, fs.WriteFile(filepath.Join(dir, f), []byte(f)))
	}
	return fs
}

func TestResolveLatest(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		artifact string
		want     string
	}{
		{
			name:     "higher version wins across attempts",
			files:    []string{"5.1.execution.v1.i1.md", "5.1.execution.v1.i2.md", "5.1.execution.v2.i1.md"},
			artifact: "execution",
			want:     "5.1.execution.v2.i1.md",
		},
		{
			name:     "version without attempt beats lower version with attempt",
			files:    []string{"5.1.execution.v1.i3.md", "5.1.execution.v2.md"},
			artifact: "execution",
			want:     "5.1.execution.v2.md",
		},
		{
			name:     "higher attempt wins within a version",
			files:    []string{"3.3.blueprint.v1.i1.md", "3.3.blueprint.v1.i3.md", "3.3.blueprint.v1.i2.md"},
			artifact: "blueprint",
			want:     "3.3.blueprint.v1.i3.md",
		},
		{
			name:     "present version beats absent version",
			files:    []string{"0.wish.md", "0.wish.v1.md"},
			artifact: "wish",
			want:     "0.wish.v1.md",
		},
		{
			name:     "feedback and src files are ignored",
			files:    []string{"0.wish.md", "0.wish.v9.src", "0.wish.md.[feedback].v3.[given].by_human.md"},
			artifact: "wish",
			want:     "0.wish.md",
		},
		{
			name:     "names anchor at delimiters",
			files:    []string{"2.criteria.blackbox.md", "2.criteria.blueprint.v5.md"},
			artifact: "criteria.blackbox",
			want:     "2.criteria.blackbox.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(seed(t, tt.files...))

			got, err := r.ResolveLatest(dir, tt.artifact)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Filename)
			assert.Equal(t, filepath.Join(dir, tt.want), got.Path)
		})
	}
}

func TestResolveLatest_NoMatch(t *testing.T) {
	r := NewResolver(seed(t, "0.wish.md"))

	got, err := r.ResolveLatest(dir, "vision")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.ResolveLatest("/repo/.behavior/missing", "wish")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCandidates_DeterministicOrder(t *testing.T) {
	files := []string{
		"5.1.execution.md",
		"5.1.execution.i4.md",
		"5.1.execution.v1.i1.md",
		"5.1.execution.v1.i2.md",
		"5.1.execution.v1.md",
		"5.1.execution.v2.i1.md",
	}
	want := []string{
		"5.1.execution.v2.i1.md",
		"5.1.execution.v1.i2.md",
		"5.1.execution.v1.i1.md",
		"5.1.execution.v1.md",
		"5.1.execution.i4.md",
		"5.1.execution.md",
	}

	// Memory listings come back in map order; repeat to shake out any
	// dependence on it.
	for i := 0; i < 20; i++ {
		r := NewResolver(seed(t, files...))
		candidates, err := r.Candidates(dir, "execution")
		require.NoError(t, err)

		var got []string
		for _, c := range candidates {
			got = append(got, c.Filename)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Candidates() order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestOutranks(t *testing.T) {
	v1i3 := Artifact{Filename: "a.v1.i3.md", Version: 1, Attempt: 3}
	v2 := Artifact{Filename: "a.v2.md", Version: 2, Attempt: grammar.Absent}
	v1i1 := Artifact{Filename: "a.v1.i1.md", Version: 1, Attempt: 1}

	assert.True(t, Outranks(v2, v1i3))
	assert.True(t, Outranks(v1i3, v1i1))
	assert.False(t, Outranks(v1i1, v1i3))
}
