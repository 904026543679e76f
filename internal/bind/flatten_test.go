package bind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"feature/x", "feature.x"},
		{"feature@v2#test", "feature_v2_test"},
		{"main", "main"},
		{"user/jane/fix-1.2", "user.jane.fix-1.2"},
		{"wip!", "wip"},
		{"a b c", "a_b_c"},
		{"weird__", "weird"},
		{"ünïcode", "_n_code"},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			assert.Equal(t, tt.want, Flatten(tt.branch))
		})
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	inputs := []string{
		"feature/x", "feature@v2#test", "a//b", "trailing/", "x__", "$$$", "a/b@c d/e~f^g",
		"release/2026.01", "-dash-", "..",
	}

	for _, in := range inputs {
		once := Flatten(in)
		assert.Equal(t, once, Flatten(once), "Flatten(%q) not idempotent", in)
		assert.False(t, strings.HasSuffix(once, "_"), "Flatten(%q) = %q has trailing underscore", in, once)
		assert.NotContains(t, once, "/")
	}
}
