package ratelimit

import (
	"sync"
	"testing"
	"time"

	"sheets_quota_client/internal/config"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mockClock provides deterministic time control for tests. Timers fire only on Advance.
type mockClock struct {
	mu          sync.Mutex
	current     time.Time
	timers      []mockTimer
	timerNotify chan struct{}
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

func newMockClock() *mockClock {
	return &mockClock{
		current:     testEpoch,
		timerNotify: make(chan struct{}, 1),
	}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *mockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	deadline := c.current.Add(d)
	if !c.current.Before(deadline) {
		ch <- c.current
		return ch
	}
	c.timers = append(c.timers, mockTimer{deadline: deadline, ch: ch})
	select {
	case c.timerNotify <- struct{}{}:
	default:
	}
	return ch
}

func (c *mockClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward and fires any pending timers.
func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	var remaining []mockTimer
	for _, t := range c.timers {
		if !now.Before(t.deadline) {
			t.ch <- now
		} else {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	c.mu.Unlock()
}

// waitForTimers blocks until the mock clock has at least n pending timers.
func waitForTimers(t *testing.T, clk *mockClock, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for clk.TimerCount() < n {
		select {
		case <-clk.timerNotify:
		case <-timeout:
			t.Fatalf("timed out waiting for %d timer(s); have %d", n, clk.TimerCount())
		}
	}
}

// sleepClock jumps forward by every requested duration, so waits return at
// once and the total simulated time can be inspected afterwards.
type sleepClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

func newSleepClock() *sleepClock {
	return &sleepClock{current: testEpoch}
}

func (c *sleepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *sleepClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

func (c *sleepClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func (c *sleepClock) Elapsed() time.Duration {
	return c.Now().Sub(testEpoch)
}

// testQuota returns a quota config with the given per-pool capacity and a one minute window.
func testQuota(capacity int) config.QuotaConfig {
	return config.QuotaConfig{
		ReadPerMinute:              capacity,
		WritePerMinute:             capacity,
		BatchUpdatePerMinute:       capacity,
		DeveloperMetadataPerMinute: capacity,
		Window:                     time.Minute,
	}
}
