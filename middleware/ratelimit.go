// middleware/ratelimit.go
package middleware

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// TokenBucket implements a simple token bucket rate limiter per client.
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed and consumes a token if so.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter manages token buckets for multiple clients.
type RateLimiter struct {
	buckets    map[string]*TokenBucket
	mu         sync.RWMutex
	maxTokens  float64
	refillRate float64
	cleanupAge time.Duration
}

func NewRateLimiter(maxRequests int, windowMs int) *RateLimiter {
	refillRate := float64(maxRequests) / (float64(windowMs) / 1000.0)
	rl := &RateLimiter{
		buckets:    make(map[string]*TokenBucket),
		maxTokens:  float64(maxRequests),
		refillRate: refillRate,
		cleanupAge: 10 * time.Minute,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.RLock()
	bucket, exists := rl.buckets[clientID]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		bucket, exists = rl.buckets[clientID]
		if !exists {
			bucket = NewTokenBucket(rl.maxTokens, rl.refillRate)
			rl.buckets[clientID] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket.Allow()
}

// cleanup removes buckets that have been idle long enough to be full again.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for id, bucket := range rl.buckets {
			bucket.mu.Lock()
			idle := time.Since(bucket.lastRefill)
			bucket.mu.Unlock()
			if idle > rl.cleanupAge {
				delete(rl.buckets, id)
			}
		}
		rl.mu.Unlock()
	}
}

var (
	apiRateLimiter   *RateLimiter
	writeRateLimiter *RateLimiter
)

func init() {
	maxRequests := envInt("RATE_LIMIT_MAX_REQUESTS", 100)
	windowMs := envInt("RATE_LIMIT_WINDOW_MS", 60000)
	apiRateLimiter = NewRateLimiter(maxRequests, windowMs)

	// Writes that grant points get a tighter budget.
	writeMax := envInt("WRITE_RATE_LIMIT_MAX_REQUESTS", 30)
	writeWindowMs := envInt("WRITE_RATE_LIMIT_WINDOW_MS", 60000)
	writeRateLimiter = NewRateLimiter(writeMax, writeWindowMs)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func rateLimitDisabled() bool {
	return os.Getenv("DISABLE_RATE_LIMIT") == "true"
}

// RateLimitMiddleware applies the general per-IP rate limit.
func RateLimitMiddleware(c *fiber.Ctx) error {
	if rateLimitDisabled() {
		return c.Next()
	}
	if !apiRateLimiter.Allow(c.IP()) {
		return c.Status(429).JSON(fiber.Map{
			"success": false,
			"error":   "Too many requests. Please try again later.",
		})
	}
	return c.Next()
}

// WriteRateLimitMiddleware applies the stricter limit for point-granting
// and challenge-progress endpoints, keyed by member when authenticated.
func WriteRateLimitMiddleware(c *fiber.Ctx) error {
	if rateLimitDisabled() {
		return c.Next()
	}
	key := c.IP()
	if id, ok := c.Locals("userId").(string); ok && id != "" {
		key = id
	}
	if !writeRateLimiter.Allow(key) {
		return c.Status(429).JSON(fiber.Map{
			"success": false,
			"error":   "Too many requests. Please try again later.",
		})
	}
	return c.Next()
}
