package badreq

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	t.Run("matches kind directly", func(t *testing.T) {
		err := NotFound("behavior %q not found", "foo")
		assert.True(t, Is(err, KindNotFound))
		assert.False(t, Is(err, KindAmbiguous))
		assert.Equal(t, `behavior "foo" not found`, err.Error())
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("give feedback: %w", Conflict("branch bound elsewhere"))
		assert.True(t, Is(err, KindConflict))

		br, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, "branch bound elsewhere", br.Message)
	})

	t.Run("plain errors are not bad requests", func(t *testing.T) {
		err := fmt.Errorf("disk on fire")
		assert.False(t, Is(err, KindNotFound))
		_, ok := As(err)
		assert.False(t, ok)
	})
}

func TestWithHintAndMatches(t *testing.T) {
	err := Ambiguous("2 behaviors match 'feat'").
		WithMatches([]string{"v2026_01_01.feat-a", "v2026_01_02.feat-b"}).
		WithHint("use a longer name")

	assert.Equal(t, KindAmbiguous, err.Kind)
	assert.Len(t, err.Matches, 2)
	assert.Equal(t, "use a longer name", err.Hint)
}
