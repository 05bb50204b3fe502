package stream

import "time"

const (
	DefaultBaseDelay = 500 * time.Millisecond
	DefaultMaxDelay  = 10 * time.Second
)

// Backoff computes the reconnection delay for a given consecutive-failure
// count: base * 2^attempt, capped at max. The sequence is non-decreasing and
// the cap also absorbs shift overflow for large attempt values.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if max <= 0 {
		max = DefaultMaxDelay
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 32 {
		return max
	}
	delay := base << uint(attempt)
	if delay <= 0 || delay > max {
		return max
	}
	return delay
}
