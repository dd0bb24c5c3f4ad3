// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiter provides per-IP rate limiting backed by Valkey, so limits
// hold across restarts and across replicas. Counters use a fixed window:
// the first request in a window creates the key with an expiry, later
// requests increment it.
type RateLimiter struct {
	client *redis.Client
	name   string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a rate limiter that allows limit requests per
// window. The name scopes the Valkey keys so independent limiters (login,
// import) don't share counters.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		name:   name,
		limit:  limit,
		window: window,
	}
}

// allow checks whether the given key is within the rate limit.
// Fails open when Valkey is unreachable so an outage doesn't lock
// everyone out of login.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	full := rateLimitKeyPrefix + rl.name + ":" + key

	count, err := rl.client.Incr(ctx, full).Result()
	if err != nil {
		slog.Warn("rate limiter unavailable", "name", rl.name, "error", err)
		return true
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, full, rl.window).Err(); err != nil {
			slog.Warn("rate limiter expire failed", "name", rl.name, "error", err)
		}
	}

	return count <= int64(rl.limit)
}

// Reset clears the counter for a key. Called after a successful login so
// a legitimate user with a few typos doesn't stay locked out.
func (rl *RateLimiter) Reset(ctx context.Context, key string) {
	full := rateLimitKeyPrefix + rl.name + ":" + key
	if err := rl.client.Del(ctx, full).Err(); err != nil {
		slog.Warn("rate limiter reset failed", "name", rl.name, "error", err)
	}
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !rl.allow(r.Context(), ip) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first (leftmost) IP, the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
