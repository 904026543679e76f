package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestParse(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	tests := []struct {
		name    string
		spec    string
		want    time.Time
		wantErr bool
	}{
		{"duration", "1h30m", now.Add(-90 * time.Minute), false},
		{"rfc3339", "2025-10-29T13:00:00Z", time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC), false},
		{"behavior date", "2025_10_29", time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC), false},
		{"iso date", "2025-10-29", time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"negative duration", "-1h", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseRange(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	since, until, err := ParseRange("2026_03_01", "1h")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), since)
	assert.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), until)

	since, until, err = ParseRange("", "")
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	assert.True(t, until.IsZero())

	_, _, err = ParseRange("1h", "2h")
	assert.ErrorContains(t, err, "--since must be before --until")

	_, _, err = ParseRange("nope", "")
	assert.ErrorContains(t, err, "invalid --since")
}
