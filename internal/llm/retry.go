package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient errors with exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Provider with retry logic. A MaxAttempts below one is
// treated as a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, sleep: sleepCtx}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) || attempt == r.config.MaxAttempts-1 {
			break
		}
		if err := r.sleep(ctx, r.backoff(attempt, err)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry reports whether err is transient. Invalid responses get a
// single retry per Generate call.
func shouldRetry(err error, invalidRetried *bool) bool {
	if isContextErr(err) {
		return false
	}

	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
