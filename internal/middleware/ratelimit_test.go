package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRateLimiter_SweepsExpiredClients - адреса с истёкшим окном не копятся
func TestRateLimiter_SweepsExpiredClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(5, time.Minute, func() time.Time { return now })

	for i := 0; i < 100; i++ {
		_, _, ok := limiter.allow(fmt.Sprintf("10.0.0.%d", i))
		assert.True(t, ok)
	}
	assert.Len(t, limiter.clients, 100)

	// окно ещё не истекло - никого не удаляем
	now = now.Add(30 * time.Second)
	limiter.allow("10.0.1.1")
	assert.Len(t, limiter.clients, 101)

	// после окна остаются только активные клиенты
	now = now.Add(45 * time.Second)
	remaining, _, ok := limiter.allow("10.0.2.1")
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)
	assert.Len(t, limiter.clients, 2)
	assert.Contains(t, limiter.clients, "10.0.1.1")
	assert.Contains(t, limiter.clients, "10.0.2.1")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(1, time.Minute, func() time.Time { return now })

	_, _, ok := limiter.allow("10.0.0.1")
	assert.True(t, ok)
	_, resetAt, ok := limiter.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	now = now.Add(time.Minute + time.Second)
	_, _, ok = limiter.allow("10.0.0.1")
	assert.True(t, ok)
}
