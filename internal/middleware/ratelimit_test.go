package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	limiter := NewInMemoryRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
	assert.False(t, limiter.Allow("10.0.0.1"))
	// Other keys are unaffected.
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, 20*time.Millisecond)

	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, limiter.Allow("k"))
}
