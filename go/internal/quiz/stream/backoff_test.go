package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSequenceIsNonDecreasingAndCapped(t *testing.T) {
	base := 500 * time.Millisecond
	max := 10 * time.Second

	var prev time.Duration
	for attempt := 0; attempt < 20; attempt++ {
		delay := Backoff(attempt, base, max)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, max, "attempt %d", attempt)
		prev = delay
	}
}

func TestBackoffReferenceValues(t *testing.T) {
	base := 500 * time.Millisecond
	max := 10 * time.Second

	assert.Equal(t, 500*time.Millisecond, Backoff(0, base, max))
	assert.Equal(t, 1*time.Second, Backoff(1, base, max))
	assert.Equal(t, 2*time.Second, Backoff(2, base, max))
	assert.Equal(t, 4*time.Second, Backoff(3, base, max))
	assert.Equal(t, 8*time.Second, Backoff(4, base, max))
	// capped from here on
	assert.Equal(t, 10*time.Second, Backoff(5, base, max))
	assert.Equal(t, 10*time.Second, Backoff(6, base, max))
}

func TestBackoffHugeAttemptDoesNotOverflow(t *testing.T) {
	assert.Equal(t, DefaultMaxDelay, Backoff(1000, DefaultBaseDelay, DefaultMaxDelay))
}

func TestBackoffZeroConfigFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseDelay, Backoff(0, 0, 0))
}
