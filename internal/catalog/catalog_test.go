package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/behave/internal/feedback"
	"github.com/dyluth/behave/internal/store"
)

const behaviorDir = "/repo/.behavior/v2026_01_01.feature-x"

var (
	early = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	late  = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
)

func newBehavior(t *testing.T) *store.Memory {
	t.Helper()
	fs := store.NewMemory()
	require.NoError(t, fs.MkdirAll(filepath.Join(behaviorDir, ".bind")))

	write := func(at time.Time, names ...string) {
		fs.SetClock(func() time.Time { return at })
		for _, name := range names {
			require.NoError(t, fs.WriteFile(filepath.Join(behaviorDir, name), []byte(name)))
		}
	}
	write(early, "0.wish.md", "1.vision.md", "5.1.execution.v1.i1.md", feedback.TemplateName)
	write(late, "5.1.execution.v2.i1.md", "5.1.execution.v2.i1.src", "0.wish.md.[feedback].v1.[given].by_human.md", "notes.txt")
	require.NoError(t, fs.WriteFile(filepath.Join(behaviorDir, ".bind", "feature.x.flag"), []byte("branch: feature/x\n")))
	return fs
}

func TestClassify(t *testing.T) {
	e := Classify("5.1.execution.v2.i3.md")
	assert.Equal(t, KindArtifact, e.Kind)
	assert.Equal(t, "execution", e.Name)
	assert.Equal(t, "5.1", e.Ordinal)
	require.NotNil(t, e.Version)
	require.NotNil(t, e.Attempt)
	assert.Equal(t, 2, *e.Version)
	assert.Equal(t, 3, *e.Attempt)

	e = Classify("0.wish.md")
	assert.Nil(t, e.Version)
	assert.Nil(t, e.Attempt)

	e = Classify("0.wish.md.[feedback].v4.[given].by_human.md")
	assert.Equal(t, KindFeedback, e.Kind)
	assert.Equal(t, "0.wish.md", e.Against)
	require.NotNil(t, e.Version)
	assert.Equal(t, 4, *e.Version)

	assert.Equal(t, KindTemplate, Classify(feedback.TemplateName).Kind)
	assert.Equal(t, KindSource, Classify("5.1.execution.v2.i1.src").Kind)
}

func TestList(t *testing.T) {
	catalog := New(newBehavior(t))

	entries, err := catalog.List(behaviorDir, nil)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Filename)
	}
	assert.Equal(t, []string{
		feedback.TemplateName,
		"0.wish.md",
		"0.wish.md.[feedback].v1.[given].by_human.md",
		"1.vision.md",
		"5.1.execution.v1.i1.md",
		"5.1.execution.v2.i1.md",
		"5.1.execution.v2.i1.src",
	}, names)
	assert.Equal(t, filepath.Join(behaviorDir, "0.wish.md"), entries[1].Path)
}

func TestList_Criteria(t *testing.T) {
	catalog := New(newBehavior(t))

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "kind feedback",
			criteria: Criteria{Kind: KindFeedback},
			want:     []string{"0.wish.md.[feedback].v1.[given].by_human.md"},
		},
		{
			name:     "glob on filename",
			criteria: Criteria{NameGlob: "5.*.md"},
			want:     []string{"5.1.execution.v1.i1.md", "5.1.execution.v2.i1.md"},
		},
		{
			name:     "since",
			criteria: Criteria{Since: late, Kind: KindArtifact},
			want:     []string{"5.1.execution.v2.i1.md"},
		},
		{
			name:     "until",
			criteria: Criteria{Until: early, NameGlob: "[0-9]*"},
			want:     []string{"0.wish.md", "1.vision.md", "5.1.execution.v1.i1.md"},
		},
		{
			name:     "bad glob matches nothing",
			criteria: Criteria{NameGlob: "["},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.criteria.HasFilters())

			entries, err := catalog.List(behaviorDir, &tt.criteria)
			require.NoError(t, err)

			var names []string
			for _, e := range entries {
				names = append(names, e.Filename)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestList_MissingDir(t *testing.T) {
	_, err := New(store.NewMemory()).List("/repo/.behavior/nope", nil)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("all")
	require.NoError(t, err)
	assert.Equal(t, Kind(""), k)

	k, err = ParseKind("feedback")
	require.NoError(t, err)
	assert.Equal(t, KindFeedback, k)

	_, err = ParseKind("blueprints")
	assert.Error(t, err)
}
