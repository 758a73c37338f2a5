// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package command

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the number of commands a player can issue in a
	// burst before rate limiting kicks in.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the token refill rate in commands per second.
	DefaultSustainedRate = 2.0

	// MinSustainedRate ensures sustained rate is at least 0.1 tokens/second.
	MinSustainedRate = 0.1

	// PermissionRateLimitBypass exempts a player from rate limiting.
	PermissionRateLimitBypass = "oxide.ratelimit.bypass"

	// DefaultBucketMaxAge is how long an idle bucket is kept before Cleanup drops it.
	DefaultBucketMaxAge = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity defaults to DefaultBurstCapacity if zero or negative.
	BurstCapacity int `koanf:"burst" json:"burst,omitempty"`
	// SustainedRate defaults to DefaultSustainedRate if zero or negative.
	SustainedRate float64 `koanf:"rate" json:"rate,omitempty"`
}

// bucket tracks rate limiting state for a single player using the
// token bucket algorithm.
type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter implements per-player rate limiting using a token bucket.
// It is safe for concurrent use.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	burstCapacity int
	sustainedRate float64
	now           func() time.Time
	gauge         prometheus.Gauge
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterClock sets the clock used to refill tokens.
func WithRateLimiterClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithRateLimiterRegistry registers a gauge tracking the bucket count.
func WithRateLimiterRegistry(reg prometheus.Registerer) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.gauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oxide_ratelimiter_buckets",
			Help: "Current number of tracked rate limiter buckets",
		})
		reg.MustRegister(rl.gauge)
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig, opts ...RateLimiterOption) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	if sustainedRate < MinSustainedRate {
		sustainedRate = MinSustainedRate
	}

	rl := &RateLimiter{
		buckets:       make(map[string]*bucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow consumes a token for key if one is available.
// Returns (allowed, cooldownMs) where cooldownMs is the wait until the next
// token when the command is refused.
func (rl *RateLimiter) Allow(key string) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:    float64(rl.burstCapacity),
			lastCheck: now,
		}
		rl.buckets[key] = b
		rl.updateGauge()
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens += elapsed * rl.sustainedRate
	if b.tokens > float64(rl.burstCapacity) {
		b.tokens = float64(rl.burstCapacity)
	}
	b.lastCheck = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - b.tokens
	return false, int64(deficit / rl.sustainedRate * 1000)
}

// Forget drops the bucket for key, e.g. when the player disconnects.
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
	rl.updateGauge()
}

// Cleanup removes buckets idle for longer than maxAge.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-maxAge)
	for key, b := range rl.buckets {
		if b.lastCheck.Before(threshold) {
			delete(rl.buckets, key)
		}
	}
	rl.updateGauge()
}

// BucketCount returns the number of tracked buckets.
func (rl *RateLimiter) BucketCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) updateGauge() {
	if rl.gauge != nil {
		rl.gauge.Set(float64(len(rl.buckets)))
	}
}
