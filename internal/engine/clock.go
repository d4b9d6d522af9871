package engine

import "time"

// Clock supplies the current time, coarse to the second.
//
// The engine stamps created_at/updated_at, derives issue dates, and
// debounces autosave from this single source. Tests substitute a
// deterministic clock so timestamps and debounce windows are exact.
type Clock interface {
	Now() int64 // seconds since epoch
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current Unix time in seconds.
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// isoDate formats a Unix timestamp as a calendar date (YYYY-MM-DD, UTC).
func isoDate(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02")
}
