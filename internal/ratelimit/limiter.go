// Package ratelimit enforces a per-user sliding-window request quota backed
// by the append-only usage store.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultWindow is the sliding window over which requests are counted.
	DefaultWindow = 60 * time.Second
	// DefaultLimit is the maximum number of requests allowed per window.
	DefaultLimit = 20
)

// UsageCounter is the read side of the usage store: a time-windowed count of
// records for one user.
type UsageCounter interface {
	CountUsageSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// RateLimitError reports that a user exceeded the request quota.
type RateLimitError struct {
	UserID string
	Count  int
	Limit  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("user %s exceeded rate limit: %d requests in window (limit %d)", e.UserID, e.Count, e.Limit)
}

// Limiter counts recent requests per user against a sliding window. It only
// reads; recording happens on a separate write path so a persistence failure
// there cannot block the limit check.
type Limiter struct {
	counter UsageCounter
	window  time.Duration
	limit   int
	now     func() time.Time
}

// New creates a Limiter. Non-positive window or limit fall back to the
// defaults (60s, 20 requests).
func New(counter UsageCounter, window time.Duration, limit int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{counter: counter, window: window, limit: limit, now: time.Now}
}

// Check returns the number of requests the user made inside the current
// window, or a RateLimitError when the count has reached the limit. It must
// run strictly before prompt construction so over-limit users never spend
// model quota.
func (l *Limiter) Check(ctx context.Context, userID string) (int, error) {
	since := l.now().Add(-l.window)
	count, err := l.counter.CountUsageSince(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("counting requests in window: %w", err)
	}
	if count >= l.limit {
		return count, &RateLimitError{UserID: userID, Count: count, Limit: l.limit}
	}
	return count, nil
}
