package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/shravani77747/ASD-Screening/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin     int // every request from one IP
	SubmitLimitPerMin int // scoring and report generation from one IP
	BurstMultiplier   int // in-memory burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:     120,
		SubmitLimitPerMin: 20,
		BurstMultiplier:   2,
	}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and in-memory fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      *monitoring.Metrics

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex
	fallbackIdle     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter with Redis and in-memory fallback
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		fallbackIdle:     30 * time.Minute,
		stop:             make(chan struct{}),
	}

	if redisClient != nil && redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// AllowIP checks the per-minute limit for all requests from ip
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	key := fmt.Sprintf("ratelimit:ip:%s", ip)
	return rl.allow(ctx, key, rl.config.IPLimitPerMin, time.Minute)
}

// AllowEndpoint checks a per-minute limit for one endpoint from ip
func (rl *RateLimiter) AllowEndpoint(ctx context.Context, endpoint, ip string, limit int) (*Result, error) {
	key := fmt.Sprintf("ratelimit:endpoint:%s:%s", endpoint, ip)
	return rl.allow(ctx, key, limit, time.Minute)
}

// allow performs the actual rate limit check using Redis or fallback
func (rl *RateLimiter) allow(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	if rl.redisLimiter != nil && rl.redisClient.IsEnabled() {
		result, err := rl.allowRedis(ctx, key, limit, period)
		if err == nil {
			return result, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitRedisError()
		}
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, limit, period), nil
}

// allowRedis uses the GCRA limiter shared by every instance
func (rl *RateLimiter) allowRedis(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit,
		Burst:  limit,
		Period: period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

// allowFallback uses an in-memory token bucket per key
func (rl *RateLimiter) allowFallback(key string, limit int, period time.Duration) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		rps := rate.Limit(float64(limit) / period.Seconds())
		burst := limit * rl.config.BurstMultiplier
		if burst < 1 {
			burst = 1
		}
		entry = &fallbackEntry{limiter: rate.NewLimiter(rps, burst)}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	limiter := entry.limiter
	rl.fallbackMutex.Unlock()

	result := &Result{
		Allowed: limiter.AllowN(now, 1),
		Limit:   limit,
		ResetAt: now.Add(period),
	}

	if remaining := int(limiter.TokensAt(now)); remaining > 0 {
		result.Remaining = remaining
	}

	if !result.Allowed {
		// time until one token is available, without consuming it
		r := limiter.ReserveN(now, 1)
		result.RetryAfter = r.DelayFrom(now)
		r.CancelAt(now)
		result.ResetAt = now.Add(result.RetryAfter)
	}

	return result
}

// cleanupFallbackLimiters drops limiters for keys not seen recently
func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.pruneFallback(time.Now())
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) pruneFallback(now time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, entry := range rl.fallbackLimiters {
		if now.Sub(entry.lastSeen) > rl.fallbackIdle {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Pruned idle fallback rate limiters", "count", removed)
	}
	return removed
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	enabled := rl.redisClient != nil && rl.redisClient.IsEnabled()
	stats := map[string]interface{}{
		"redis_enabled":     enabled,
		"fallback_limiters": fallbackCount,
	}

	if enabled {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}

	return stats
}
