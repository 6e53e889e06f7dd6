// Package ratelimit gates Sheets API calls through per-pool sliding windows
// and retries retryable failures with exponential backoff.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/config"
)

// Clock abstracts time operations for testability.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// realClock implements Clock using the standard time package.
type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// minWait keeps throttled callers from spinning when a slot frees at the same instant.
const minWait = 10 * time.Millisecond

// Pool is an independently limited category of API calls.
type Pool int

const (
	PoolRead Pool = iota
	PoolWrite
	PoolBatchUpdate
	PoolDeveloperMetadata
)

// Pools lists every pool in a fixed order.
var Pools = []Pool{PoolRead, PoolWrite, PoolBatchUpdate, PoolDeveloperMetadata}

func (p Pool) String() string {
	switch p {
	case PoolRead:
		return "read"
	case PoolWrite:
		return "write"
	case PoolBatchUpdate:
		return "batchUpdate"
	case PoolDeveloperMetadata:
		return "developerMetadata"
	default:
		return "unknown"
	}
}

// State is the dispatch state of a pool.
type State int

const (
	StateOpen      State = iota // under budget
	StateThrottled              // budget exhausted, callers wait for the window to slide
	StateBackoff                // server asked us to slow down
)

func (s State) String() string {
	switch s {
	case StateThrottled:
		return "throttled"
	case StateBackoff:
		return "backoff"
	default:
		return "open"
	}
}

// QuotaPool is a sliding-window log of dispatch times for one pool.
// It is safe for concurrent use; pools never share locks.
type QuotaPool struct {
	mu           sync.Mutex
	pool         Pool
	clock        Clock
	capacity     int
	window       time.Duration
	stamps       []time.Time // oldest first
	backoffUntil time.Time
	state        State
}

func newQuotaPool(clk Clock, pool Pool, capacity int, window time.Duration) *QuotaPool {
	return &QuotaPool{
		pool:     pool,
		clock:    clk,
		capacity: capacity,
		window:   window,
		stamps:   make([]time.Time, 0, capacity),
	}
}

// purge drops stamps that have left the window. Must be called with lock held.
func (q *QuotaPool) purge(now time.Time) {
	i := 0
	for i < len(q.stamps) && now.Sub(q.stamps[i]) >= q.window {
		i++
	}
	if i > 0 {
		q.stamps = append(q.stamps[:0], q.stamps[i:]...)
	}
}

// setState records a transition. Must be called with lock held.
func (q *QuotaPool) setState(s State) {
	if q.state == s {
		return
	}
	event := log.Debug()
	if s == StateBackoff {
		event = log.Warn()
	}
	event.
		Str("pool", q.pool.String()).
		Str("from", q.state.String()).
		Str("to", s.String()).
		Int("in_window", len(q.stamps)).
		Int("capacity", q.capacity).
		Msg("Quota pool state change")
	q.state = s
}

// reserve takes a slot and returns 0, or returns how long to wait before trying again.
// Waiting callers never touch the window.
func (q *QuotaPool) reserve() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	if now.Before(q.backoffUntil) {
		q.setState(StateBackoff)
		return q.backoffUntil.Sub(now)
	}

	q.purge(now)
	if len(q.stamps) < q.capacity {
		q.stamps = append(q.stamps, now)
		q.setState(StateOpen)
		return 0
	}

	q.setState(StateThrottled)
	wait := q.stamps[0].Add(q.window).Sub(now)
	if wait < minWait {
		wait = minWait
	}
	return wait
}

// Acquire blocks until a slot is free. A positive timeout bounds the total wait
// and fails with a RateLimitTimeout error; ctx cancellation fails with
// Cancelled or DeadlineExceeded. Neither leaves a trace in the window.
func (q *QuotaPool) Acquire(ctx context.Context, timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = q.clock.Now().Add(timeout)
	}

	for {
		wait := q.reserve()
		if wait == 0 {
			return nil
		}

		if !deadline.IsZero() {
			remaining := deadline.Sub(q.clock.Now())
			if remaining <= 0 {
				return apierr.New(apierr.KindRateLimitTimeout, "ratelimit.Acquire",
					"no %s quota available within %v", q.pool, timeout)
			}
			if wait > remaining {
				wait = remaining
			}
		}

		log.Debug().
			Str("pool", q.pool.String()).
			Dur("wait", wait).
			Msg("Waiting for quota")

		select {
		case <-ctx.Done():
			return apierr.FromContext("ratelimit.Acquire", ctx.Err())
		case <-q.clock.After(wait):
		}
	}
}

// EnterBackoff holds all dispatches on this pool for d. An existing longer backoff is kept.
func (q *QuotaPool) EnterBackoff(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	until := q.clock.Now().Add(d)
	if until.After(q.backoffUntil) {
		q.backoffUntil = until
	}
	q.setState(StateBackoff)
}

// State reports the pool's current state.
func (q *QuotaPool) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	switch {
	case now.Before(q.backoffUntil):
		return StateBackoff
	case q.inWindow(now) >= q.capacity:
		return StateThrottled
	default:
		return StateOpen
	}
}

func (q *QuotaPool) inWindow(now time.Time) int {
	q.purge(now)
	return len(q.stamps)
}

// Available returns the number of slots free right now, ignoring backoff.
func (q *QuotaPool) Available() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity - q.inWindow(q.clock.Now())
}

func (q *QuotaPool) Capacity() int { return q.capacity }

// Limiter owns one QuotaPool per Pool for the life of a client.
type Limiter struct {
	clock          Clock
	pools          map[Pool]*QuotaPool
	acquireTimeout time.Duration
}

// NewLimiter creates the four pools from cfg using the wall clock.
func NewLimiter(cfg config.QuotaConfig) *Limiter {
	return NewLimiterWithClock(realClock{}, cfg)
}

// NewLimiterWithClock is NewLimiter with an injected clock.
// Panics if clk is nil.
func NewLimiterWithClock(clk Clock, cfg config.QuotaConfig) *Limiter {
	if clk == nil {
		panic("ratelimit: Limiter requires a non-nil Clock")
	}
	capacities := map[Pool]int{
		PoolRead:              cfg.ReadPerMinute,
		PoolWrite:             cfg.WritePerMinute,
		PoolBatchUpdate:       cfg.BatchUpdatePerMinute,
		PoolDeveloperMetadata: cfg.DeveloperMetadataPerMinute,
	}
	window := cfg.Window
	if window <= 0 {
		window = config.DefaultQuotaWindow
	}
	l := &Limiter{clock: clk, pools: make(map[Pool]*QuotaPool, len(capacities)), acquireTimeout: cfg.AcquireTimeout}
	for p, c := range capacities {
		if c <= 0 {
			c = 1
		}
		l.pools[p] = newQuotaPool(clk, p, c, window)
	}
	return l
}

// Pool returns the QuotaPool for p.
func (l *Limiter) Pool(p Pool) *QuotaPool {
	return l.pools[p]
}

// Acquire takes a slot from pool p, waiting at most the configured acquire timeout.
func (l *Limiter) Acquire(ctx context.Context, p Pool) error {
	return l.pools[p].Acquire(ctx, l.acquireTimeout)
}

// EnterBackoff puts pool p into backoff for d.
func (l *Limiter) EnterBackoff(p Pool, d time.Duration) {
	l.pools[p].EnterBackoff(d)
}

// Clock returns the limiter's clock.
func (l *Limiter) Clock() Clock {
	return l.clock
}
