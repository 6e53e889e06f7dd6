package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/config"
)

// newTestController builds a controller with the default retry policy minus jitter.
func newTestController(clk Clock) *Controller {
	retry := config.DefaultClientConfig.Retry
	retry.Jitter = 0
	return NewController(NewLimiterWithClock(clk, config.DefaultClientConfig.Quota), retry)
}

func httpError(status int, retryAfter time.Duration) error {
	return &apierr.Error{
		Kind:       kindForTest(status),
		Op:         "test",
		StatusCode: status,
		RetryAfter: retryAfter,
	}
}

func kindForTest(status int) apierr.Kind {
	switch status {
	case http.StatusBadRequest:
		return apierr.KindInvalidRequest
	case http.StatusUnauthorized:
		return apierr.KindAuthentication
	case http.StatusForbidden:
		return apierr.KindPermission
	case http.StatusNotFound:
		return apierr.KindNotFound
	case http.StatusTooManyRequests:
		return apierr.KindRateLimitExceeded
	default:
		return apierr.KindTransientServer
	}
}

// scripted returns fn results from statuses in order; 0 means success.
func scripted(statuses ...int) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		i := calls
		calls++
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		if statuses[i] == 0 {
			return nil
		}
		return httpError(statuses[i], 0)
	}, &calls
}

func TestRunSucceedsAfterRateLimits(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	fn, calls := scripted(429, 429, 429, 429, 429, 0)

	var retries []int
	err := c.Run(context.Background(), PoolRead, RunOptions{
		Op:         "values.get",
		Idempotent: true,
		OnRetry:    func(s RetryState) { retries = append(retries, s.Attempt) },
	}, fn)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if *calls != 6 {
		t.Errorf("Expected 6 calls, got %d", *calls)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, retries); diff != "" {
		t.Errorf("Retry numbering mismatch (-want +got):\n%s", diff)
	}
	expected := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if diff := cmp.Diff(expected, clk.Sleeps()); diff != "" {
		t.Errorf("Backoff waits mismatch (-want +got):\n%s", diff)
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	fn, calls := scripted(429)

	err := c.Run(context.Background(), PoolWrite, RunOptions{Op: "values.update", Idempotent: true}, fn)

	if !errors.Is(err, apierr.ErrRetriesExhausted) {
		t.Fatalf("Expected retries exhausted, got %v", err)
	}
	if !errors.Is(err, apierr.ErrRateLimitExceeded) {
		t.Errorf("Expected last rate limit error to be wrapped, got %v", err)
	}
	e, _ := apierr.As(err)
	if e.Attempts != 6 {
		t.Errorf("Expected 6 attempts, got %d", e.Attempts)
	}
	if e.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", e.StatusCode)
	}
	if *calls != 6 {
		t.Errorf("Expected 6 calls, got %d", *calls)
	}
}

func TestRunDoesNotRetryClientErrors(t *testing.T) {
	testCases := []struct {
		status int
		kind   apierr.Kind
	}{
		{http.StatusBadRequest, apierr.KindInvalidRequest},
		{http.StatusForbidden, apierr.KindPermission},
		{http.StatusNotFound, apierr.KindNotFound},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			clk := newSleepClock()
			c := newTestController(clk)
			fn, calls := scripted(tc.status, 0)

			err := c.Run(context.Background(), PoolRead, RunOptions{Op: "values.get", Idempotent: true}, fn)
			if apierr.KindOf(err) != tc.kind {
				t.Errorf("Expected %s, got %v", tc.kind, err)
			}
			if *calls != 1 {
				t.Errorf("Expected 1 call, got %d", *calls)
			}
			if len(clk.Sleeps()) != 0 {
				t.Errorf("Expected no waits, got %v", clk.Sleeps())
			}
		})
	}
}

func TestRunRefreshesOnceOn401(t *testing.T) {
	t.Run("refresh then success", func(t *testing.T) {
		c := newTestController(newSleepClock())
		fn, calls := scripted(401, 0)
		refreshes := 0

		err := c.Run(context.Background(), PoolRead, RunOptions{
			Op:         "values.get",
			Idempotent: true,
			Refresh:    func(context.Context) error { refreshes++; return nil },
		}, fn)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if refreshes != 1 || *calls != 2 {
			t.Errorf("Expected 1 refresh and 2 calls, got %d and %d", refreshes, *calls)
		}
	})

	t.Run("second 401 is final", func(t *testing.T) {
		c := newTestController(newSleepClock())
		fn, calls := scripted(401)
		refreshes := 0

		err := c.Run(context.Background(), PoolWrite, RunOptions{
			Op:      "values.append",
			Refresh: func(context.Context) error { refreshes++; return nil },
		}, fn)
		if apierr.KindOf(err) != apierr.KindAuthentication {
			t.Errorf("Expected authentication error, got %v", err)
		}
		if refreshes != 1 || *calls != 2 {
			t.Errorf("Expected 1 refresh and 2 calls, got %d and %d", refreshes, *calls)
		}
	})

	t.Run("refresh failure", func(t *testing.T) {
		c := newTestController(newSleepClock())
		fn, calls := scripted(401, 0)
		boom := errors.New("token endpoint down")

		err := c.Run(context.Background(), PoolRead, RunOptions{
			Op:      "values.get",
			Refresh: func(context.Context) error { return boom },
		}, fn)
		if !errors.Is(err, boom) || apierr.KindOf(err) != apierr.KindAuthentication {
			t.Errorf("Expected authentication error wrapping refresh failure, got %v", err)
		}
		if *calls != 1 {
			t.Errorf("Expected 1 call, got %d", *calls)
		}
	})
}

func TestRunDoesNotRetryNonIdempotent(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	fn, calls := scripted(500, 0)

	err := c.Run(context.Background(), PoolWrite, RunOptions{Op: "values.append"}, fn)
	if apierr.KindOf(err) != apierr.KindTransientServer {
		t.Errorf("Expected transient server error, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("Expected 1 call, got %d", *calls)
	}
}

func TestRunServiceUnavailableHonoursRetryAfter(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	calls := 0
	fn := func(context.Context) error {
		calls++
		if calls == 1 {
			return httpError(http.StatusServiceUnavailable, 7*time.Second)
		}
		return nil
	}

	var delays []time.Duration
	err := c.Run(context.Background(), PoolBatchUpdate, RunOptions{
		Op:         "spreadsheets.batchUpdate",
		Idempotent: true,
		OnRetry:    func(s RetryState) { delays = append(delays, s.NextDelay) },
	}, fn)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if diff := cmp.Diff([]time.Duration{7 * time.Second}, delays); diff != "" {
		t.Errorf("Delay mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{7 * time.Second}, clk.Sleeps()); diff != "" {
		t.Errorf("Sleeps mismatch (-want +got):\n%s", diff)
	}
	pool := c.Limiter().Pool(PoolBatchUpdate)
	if !pool.backoffUntil.Equal(testEpoch.Add(7 * time.Second)) {
		t.Errorf("Expected pool backoff until +7s, got %v", pool.backoffUntil)
	}
	if !c.Limiter().Pool(PoolRead).backoffUntil.IsZero() {
		t.Error("Expected read pool untouched by batchUpdate backoff")
	}
}

func TestRunRetryAfterIsCappedAtMaxWait(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	calls := 0
	fn := func(context.Context) error {
		calls++
		if calls == 1 {
			return httpError(http.StatusTooManyRequests, 10*time.Minute)
		}
		return nil
	}

	var delays []time.Duration
	err := c.Run(context.Background(), PoolRead, RunOptions{
		Op:         "values.get",
		Idempotent: true,
		OnRetry:    func(s RetryState) { delays = append(delays, s.NextDelay) },
	}, fn)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	maxWait := config.DefaultClientConfig.Retry.MaxWait
	if diff := cmp.Diff([]time.Duration{maxWait}, delays); diff != "" {
		t.Errorf("Delay mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{maxWait}, clk.Sleeps()); diff != "" {
		t.Errorf("Sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestRunServerErrorBacksOffLocally(t *testing.T) {
	clk := newSleepClock()
	c := newTestController(clk)
	fn, calls := scripted(500, 502, 0)

	if err := c.Run(context.Background(), PoolRead, RunOptions{Op: "values.get", Idempotent: true}, fn); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if *calls != 3 {
		t.Errorf("Expected 3 calls, got %d", *calls)
	}
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, clk.Sleeps()); diff != "" {
		t.Errorf("Sleeps mismatch (-want +got):\n%s", diff)
	}
	if !c.Limiter().Pool(PoolRead).backoffUntil.IsZero() {
		t.Error("Expected no pool-wide backoff for 5xx")
	}
}

func TestRunAttemptTimeoutIsRetried(t *testing.T) {
	clk := newSleepClock()
	retry := config.DefaultClientConfig.Retry
	retry.Jitter = 0
	retry.Timeout = 10 * time.Millisecond
	c := NewController(NewLimiterWithClock(clk, config.DefaultClientConfig.Quota), retry)

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}

	var kinds []apierr.Kind
	err := c.Run(context.Background(), PoolRead, RunOptions{
		Op:         "values.get",
		Idempotent: true,
		OnRetry:    func(s RetryState) { kinds = append(kinds, apierr.KindOf(s.LastErr)) },
	}, fn)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if diff := cmp.Diff([]apierr.Kind{apierr.KindNetwork}, kinds); diff != "" {
		t.Errorf("Retry kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCallerCancellation(t *testing.T) {
	c := newTestController(newSleepClock())
	ctx, cancel := context.WithCancel(context.Background())

	fn := func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}

	err := c.Run(ctx, PoolRead, RunOptions{Op: "values.get", Idempotent: true}, fn)
	if !errors.Is(err, apierr.ErrCancelled) {
		t.Errorf("Expected cancelled, got %v", err)
	}
}
