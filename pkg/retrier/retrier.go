// Package retrier retries failing operations with capped exponential backoff.
package retrier

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const (
	defaultInitialInterval = 1 * time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultMultiplier      = 2.0
	defaultMaxRetries      = 5
	defaultJitter          = 0.1
)

// backoff computes the wait before each retry.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

// delay returns the wait before retry n, counting from 1.
func (b backoff) delay(n int) time.Duration {
	d := float64(b.initial) * math.Pow(b.multiplier, float64(n-1))
	if d > float64(b.max) {
		d = float64(b.max)
	}
	if b.jitter > 0 {
		d += (rand.Float64()*2 - 1) * b.jitter * d
	}
	return max(time.Duration(d), 0)
}

// Retrier re-runs an operation until it succeeds, fails permanently or runs out of retries.
type Retrier struct {
	backoff    backoff
	maxRetries int
	retryIf    func(error) bool
	onRetry    func(attempt int, err error)
}

// Option defines a function to configure the Retrier.
type Option func(*Retrier)

// WithInitialInterval sets the wait before the first retry.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.backoff.initial = d
	}
}

// WithMaxInterval caps the wait between retries.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.backoff.max = d
	}
}

// WithMultiplier sets the backoff growth factor.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		r.backoff.multiplier = m
	}
}

// WithMaxRetries sets the maximum number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) {
		r.maxRetries = n
	}
}

// WithJitter sets the jitter factor (0.0 to 1.0).
func WithJitter(j float64) Option {
	return func(r *Retrier) {
		r.backoff.jitter = j
	}
}

// WithRetryIf stops retrying as soon as fn reports an error as permanent.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = fn
	}
}

// WithOnRetry registers a hook called before every retry with the failed attempt number.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		backoff: backoff{
			initial:    defaultInitialInterval,
			max:        defaultMaxInterval,
			multiplier: defaultMultiplier,
			jitter:     defaultJitter,
		},
		maxRetries: defaultMaxRetries,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Do runs fn and retries it on failure. It returns the last error, or ctx.Err()
// when the context ends while waiting.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt > r.maxRetries || (r.retryIf != nil && !r.retryIf(err)) {
			return err
		}
		if r.onRetry != nil {
			r.onRetry(attempt, err)
		}

		timer := time.NewTimer(r.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// DoWithData executes the given function with retries and returns a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
