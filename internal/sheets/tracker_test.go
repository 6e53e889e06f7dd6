package sheets

import (
	"context"
	"testing"
	"time"

	"sheets_quota_client/internal/ratelimit"
)

func TestCallTracker_RecordCall(t *testing.T) {
	clk := newManualClock()
	tracker := NewCallTracker(clk)

	tracker.RecordCall("values.get", ratelimit.PoolRead)
	tracker.RecordCall("values.batchGet", ratelimit.PoolRead)
	tracker.RecordCall("values.update", ratelimit.PoolWrite)
	tracker.RecordCall("values.get", ratelimit.PoolRead)
	tracker.RecordRetry("values.get")

	clk.Advance(2 * time.Minute)
	stats := tracker.GetSessionStats()

	if stats.TotalCalls != 4 {
		t.Errorf("Expected 4 total calls, got %d", stats.TotalCalls)
	}
	if stats.CallsByEndpoint["values.get"] != 2 {
		t.Errorf("Expected 2 values.get calls, got %d", stats.CallsByEndpoint["values.get"])
	}
	if stats.CallsByPool["read"] != 3 || stats.CallsByPool["write"] != 1 {
		t.Errorf("Expected 3 read and 1 write, got %v", stats.CallsByPool)
	}
	if stats.Retries != 1 {
		t.Errorf("Expected 1 retry, got %d", stats.Retries)
	}
	if stats.SessionDuration != 2*time.Minute {
		t.Errorf("Expected 2m session, got %v", stats.SessionDuration)
	}
	if stats.CallsPerMinute != 2 {
		t.Errorf("Expected 2 calls per minute, got %v", stats.CallsPerMinute)
	}

	// Stats are a snapshot
	stats.CallsByPool["read"] = 100
	if tracker.GetSessionStats().CallsByPool["read"] != 3 {
		t.Error("Expected stats maps to be copies")
	}
}

func TestCallTracker_ResetSession(t *testing.T) {
	tracker := NewCallTracker(newManualClock())

	// Add some calls
	tracker.RecordCall("values.get", ratelimit.PoolRead)
	tracker.RecordCall("values.update", ratelimit.PoolWrite)
	tracker.RecordCall("values.get", ratelimit.PoolRead)

	// Verify calls were recorded
	stats := tracker.GetSessionStats()
	if stats.TotalCalls != 3 {
		t.Errorf("Expected 3 total calls before reset, got %d", stats.TotalCalls)
	}

	// Reset session
	tracker.ResetSession()

	// Verify session calls were reset (but total calls remain for history)
	stats = tracker.GetSessionStats()
	if stats.SessionCalls != 0 {
		t.Errorf("Expected 0 session calls after reset, got %d", stats.SessionCalls)
	}

	if stats.TotalCalls == 0 {
		t.Error("Expected total calls to be preserved after session reset")
	}
	if stats.CallsPerMinute != 0 {
		t.Errorf("Expected no rate for an empty session, got %v", stats.CallsPerMinute)
	}
}

func TestCallTracker_LogSessionSummary(t *testing.T) {
	tracker := NewCallTracker(newManualClock())

	tracker.RecordCall("values.get", ratelimit.PoolRead)
	tracker.RecordCall("spreadsheets.batchUpdate", ratelimit.PoolBatchUpdate)
	tracker.RecordCall("developerMetadata.search", ratelimit.PoolDeveloperMetadata)
	tracker.RecordCall("values.get", ratelimit.PoolRead)

	// This should not panic and should log the summary
	tracker.LogSessionSummary(context.Background())

	stats := tracker.GetSessionStats()
	if stats.TotalCalls != 4 {
		t.Errorf("Expected 4 total calls after logging, got %d", stats.TotalCalls)
	}
}
