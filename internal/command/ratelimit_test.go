// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package command

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	assert.Equal(t, DefaultBurstCapacity, rl.burstCapacity)
	assert.InDelta(t, DefaultSustainedRate, rl.sustainedRate, 1e-9)

	rl = NewRateLimiter(RateLimiterConfig{SustainedRate: 0.01})
	assert.InDelta(t, MinSustainedRate, rl.sustainedRate, 1e-9)
}

func TestRateLimiter_BurstThenRefuse(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 3, SustainedRate: 1}, WithRateLimiterClock(clock.Now))

	for i := 0; i < 3; i++ {
		allowed, cooldown := rl.Allow("p1")
		assert.True(t, allowed, "command %d within burst", i)
		assert.Zero(t, cooldown)
	}

	allowed, cooldown := rl.Allow("p1")
	assert.False(t, allowed)
	assert.Equal(t, int64(1000), cooldown)

	allowed, _ = rl.Allow("p2")
	assert.True(t, allowed, "buckets are per player")
}

func TestRateLimiter_Refill(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 1, SustainedRate: 2}, WithRateLimiterClock(clock.Now))

	allowed, _ := rl.Allow("p1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("p1")
	assert.False(t, allowed)

	clock.Advance(500 * time.Millisecond)
	allowed, _ = rl.Allow("p1")
	assert.True(t, allowed)

	clock.Advance(time.Hour)
	allowed, _ = rl.Allow("p1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("p1")
	assert.False(t, allowed, "refill is capped at burst capacity")
}

func TestRateLimiter_ForgetAndCleanup(t *testing.T) {
	clock := newFakeClock()
	reg := prometheus.NewRegistry()
	rl := NewRateLimiter(RateLimiterConfig{},
		WithRateLimiterClock(clock.Now),
		WithRateLimiterRegistry(reg))

	rl.Allow("p1")
	rl.Allow("p2")
	assert.Equal(t, 2, rl.BucketCount())
	assert.InDelta(t, 2, testutil.ToFloat64(rl.gauge), 1e-9)

	rl.Forget("p1")
	assert.Equal(t, 1, rl.BucketCount())

	clock.Advance(2 * DefaultBucketMaxAge)
	rl.Allow("p3")
	rl.Cleanup(DefaultBucketMaxAge)

	assert.Equal(t, 1, rl.BucketCount())
	assert.InDelta(t, 1, testutil.ToFloat64(rl.gauge), 1e-9)
}
