package bind

import "time"

// SetTimeNow pins the clock used for flag timestamps.
func SetTimeNow(fn func() time.Time) func() {
	prev := timeNow
	timeNow = fn
	return func() { timeNow = prev }
}
