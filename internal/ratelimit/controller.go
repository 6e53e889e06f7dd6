package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/config"
)

// RunOptions describe one logical request to Controller.Run.
type RunOptions struct {
	// Op names the request in errors and logs, e.g. "values.update".
	Op string
	// Idempotent requests are retried on retryable failures. Others fail on the first error.
	Idempotent bool
	// Refresh is called once after a 401; the request is then repeated.
	Refresh func(ctx context.Context) error
	// OnRetry observes every scheduled retry.
	OnRetry func(RetryState)
}

// Controller runs requests through the limiter and retries them with backoff.
type Controller struct {
	limiter    *Limiter
	backoff    Backoff
	maxRetries int
	timeout    time.Duration
}

// NewController creates a controller over limiter using cfg's retry policy.
func NewController(limiter *Limiter, cfg config.RetryConfig) *Controller {
	return &Controller{
		limiter:    limiter,
		backoff:    NewBackoff(cfg),
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
	}
}

// Limiter returns the controller's limiter.
func (c *Controller) Limiter() *Limiter {
	return c.limiter
}

// Run acquires a slot from pool, calls fn and classifies the outcome.
//
// Rate limit errors and 503s put the whole pool into backoff for the larger of
// the computed delay and Retry-After, capped at MaxWait. Other retryable errors
// back off locally.
// Once MaxRetries retries are spent the last error is wrapped in RetriesExhausted.
func (c *Controller) Run(ctx context.Context, pool Pool, opts RunOptions, fn func(ctx context.Context) error) error {
	var state *RetryState
	refreshed := false

	for {
		if err := c.limiter.Acquire(ctx, pool); err != nil {
			return err
		}

		err := c.attempt(ctx, opts.Op, fn)
		if err == nil {
			if state != nil {
				log.Debug().
					Str("op", opts.Op).
					Int("retries", state.Attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		kind := apierr.KindOf(err)
		if kind == apierr.KindAuthentication && opts.Refresh != nil && !refreshed {
			refreshed = true
			log.Debug().Str("op", opts.Op).Msg("Refreshing credentials after 401")
			if rerr := opts.Refresh(ctx); rerr != nil {
				return &apierr.Error{Kind: apierr.KindAuthentication, Op: opts.Op, Message: "credential refresh failed", Err: rerr}
			}
			continue
		}
		if !kind.Retryable() || !opts.Idempotent {
			return err
		}

		if state == nil {
			state = &RetryState{}
		}
		if state.Attempt >= c.maxRetries {
			log.Warn().
				Err(err).
				Str("op", opts.Op).
				Int("attempts", state.Attempt+1).
				Msg("Retries exhausted")
			return apierr.RetriesExhausted(opts.Op, state.Attempt+1, err)
		}

		delay := c.backoff.Delay(state.Attempt)
		poolWide := false
		if e, ok := apierr.As(err); ok && (e.Kind == apierr.KindRateLimitExceeded || e.StatusCode == http.StatusServiceUnavailable) {
			poolWide = true
			if e.RetryAfter > delay {
				delay = e.RetryAfter
			}
			if delay > c.backoff.MaxWait {
				delay = c.backoff.MaxWait
			}
		}

		state.Attempt++
		state.NextDelay = delay
		state.LastErr = err
		if opts.OnRetry != nil {
			opts.OnRetry(*state)
		}

		log.Warn().
			Err(err).
			Str("op", opts.Op).
			Str("pool", pool.String()).
			Int("retry", state.Attempt).
			Dur("delay", delay).
			Bool("pool_backoff", poolWide).
			Msg("Retrying request")

		if poolWide {
			// The next Acquire waits out the pool's backoff.
			c.limiter.EnterBackoff(pool, delay)
			continue
		}
		select {
		case <-ctx.Done():
			return apierr.FromContext(opts.Op, ctx.Err())
		case <-c.limiter.Clock().After(delay):
		}
	}
}

// attempt calls fn under the per-attempt timeout. Expiry of that timeout while
// the caller's context is still live is a network failure and may be retried.
func (c *Controller) attempt(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := fn(attemptCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return apierr.FromContext(op, ctx.Err())
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &apierr.Error{Kind: apierr.KindNetwork, Op: op, Message: "request timed out", Err: err}
	}
	return err
}
