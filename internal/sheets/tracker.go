package sheets

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sheets_quota_client/internal/ratelimit"
)

// CallTracker counts physical API calls per endpoint and per quota pool
type CallTracker struct {
	clock           ratelimit.Clock
	sessionStart    time.Time
	sessionCalls    int64
	totalCalls      int64
	retries         int64
	callsByEndpoint map[string]int64
	callsByPool     map[string]int64
	mutex           sync.RWMutex
}

// NewCallTracker creates a tracker whose session starts now
func NewCallTracker(clock ratelimit.Clock) *CallTracker {
	return &CallTracker{
		clock:           clock,
		sessionStart:    clock.Now(),
		callsByEndpoint: make(map[string]int64),
		callsByPool:     make(map[string]int64),
	}
}

// RecordCall records one request about to be sent
func (t *CallTracker) RecordCall(endpoint string, pool ratelimit.Pool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.sessionCalls++
	t.totalCalls++
	t.callsByEndpoint[endpoint]++
	t.callsByPool[pool.String()]++
}

// RecordRetry records a scheduled retry
func (t *CallTracker) RecordRetry(endpoint string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.retries++
}

// GetSessionStats returns API call statistics for current session
func (t *CallTracker) GetSessionStats() CallStats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	duration := t.clock.Now().Sub(t.sessionStart)

	endpointCopy := make(map[string]int64, len(t.callsByEndpoint))
	for k, v := range t.callsByEndpoint {
		endpointCopy[k] = v
	}
	poolCopy := make(map[string]int64, len(t.callsByPool))
	for k, v := range t.callsByPool {
		poolCopy[k] = v
	}

	var perMinute float64
	if duration > 0 {
		perMinute = float64(t.sessionCalls) / duration.Minutes()
	}

	return CallStats{
		SessionCalls:    t.sessionCalls,
		TotalCalls:      t.totalCalls,
		Retries:         t.retries,
		SessionDuration: duration,
		CallsByEndpoint: endpointCopy,
		CallsByPool:     poolCopy,
		CallsPerMinute:  perMinute,
	}
}

// ResetSession resets session-specific counters
func (t *CallTracker) ResetSession() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.sessionStart = t.clock.Now()
	t.sessionCalls = 0
	// Keep total calls and breakdowns for historical tracking
}

// LogSessionSummary logs a summary of API usage for the session
func (t *CallTracker) LogSessionSummary(ctx context.Context) {
	stats := t.GetSessionStats()

	logEvent := log.Info().
		Int64("session_calls", stats.SessionCalls).
		Int64("total_calls", stats.TotalCalls).
		Int64("retries", stats.Retries).
		Float64("calls_per_minute", stats.CallsPerMinute).
		Dur("session_duration", stats.SessionDuration)

	for endpoint, count := range stats.CallsByEndpoint {
		logEvent = logEvent.Int64(endpoint+"_calls", count)
	}
	for pool, count := range stats.CallsByPool {
		logEvent = logEvent.Int64("pool_"+pool+"_calls", count)
	}

	logEvent.Msg("API call session summary")
}

// CallStats represents API call statistics
type CallStats struct {
	SessionCalls    int64
	TotalCalls      int64
	Retries         int64
	SessionDuration time.Duration
	CallsByEndpoint map[string]int64
	CallsByPool     map[string]int64
	CallsPerMinute  float64
}

// Stats returns the client's call statistics.
func (c *Client) Stats() CallStats {
	return c.tracker.GetSessionStats()
}

// LogSessionSummary logs the client's call statistics.
func (c *Client) LogSessionSummary(ctx context.Context) {
	c.tracker.LogSessionSummary(ctx)
}
