package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jeanpaul/lifeline/internal/timeline"
)

// RetryResolver wraps a Resolver with exponential backoff retry logic.
type RetryResolver struct {
	inner      Resolver
	maxRetries int
	baseDelay  time.Duration
}

func WithRetry(r Resolver, maxRetries int) *RetryResolver {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryResolver{inner: r, maxRetries: maxRetries, baseDelay: 500 * time.Millisecond}
}

func (r *RetryResolver) Resolve(ctx context.Context, name string) (timeline.Person, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		p, err := r.inner.Resolve(ctx, name)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !r.isRetryable(err) || attempt == r.maxRetries {
			break
		}
		if err := r.backoff(ctx, attempt); err != nil {
			return timeline.Person{}, lastErr
		}
	}
	return timeline.Person{}, fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

func (r *RetryResolver) isRetryable(err error) bool {
	msg := err.Error()
	// Retry on rate limits, server errors, connection issues
	for _, s := range []string{"429", "500", "502", "503", "529", "connection refused", "timeout", "deadline exceeded", "EOF", "reset by peer"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (r *RetryResolver) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
