package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "zero rate allows only the burst", rps: 0, burst: 1, calls: 4, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst, time.Minute)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("usr-1") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("usr-1"))
	assert.False(t, rl.Allow("usr-1"))
	assert.True(t, rl.Allow("10.0.0.7"))
}

func TestKeyedRateLimiter_SweepDropsIdleKeys(t *testing.T) {
	rl := New(1, 1, time.Hour)
	defer rl.Stop()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	now = now.Add(50 * time.Minute)
	rl.Allow("active")
	now = now.Add(20 * time.Minute)

	rl.sweep()
	assert.Equal(t, 1, rl.Len())

	// The idle caller starts over with a full bucket.
	assert.True(t, rl.Allow("idle"))
}
