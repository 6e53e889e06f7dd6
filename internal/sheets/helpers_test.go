package sheets

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"sheets_quota_client/internal/config"
	"sheets_quota_client/internal/ratelimit"
	"sheets_quota_client/internal/transport"
	"sheets_quota_client/internal/transport/mocks"
)

const (
	testBaseURL       = "https://sheets.test/v4/"
	testSpreadsheetID = "sheet-123"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// manualClock only lets time pass on Advance.
type manualClock struct {
	mu          sync.Mutex
	current     time.Time
	timers      []manualTimer
	timerNotify chan struct{}
}

type manualTimer struct {
	deadline time.Time
	ch       chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{current: testEpoch, timerNotify: make(chan struct{}, 1)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	deadline := c.current.Add(d)
	if !c.current.Before(deadline) {
		ch <- c.current
		return ch
	}
	c.timers = append(c.timers, manualTimer{deadline: deadline, ch: ch})
	select {
	case c.timerNotify <- struct{}{}:
	default:
	}
	return ch
}

func (c *manualClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	var remaining []manualTimer
	for _, t := range c.timers {
		if !c.current.Before(t.deadline) {
			t.ch <- c.current
		} else {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
}

func waitForTimers(t *testing.T, clk *manualClock, n int) {
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

// skipClock jumps forward by every requested wait.
type skipClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

func newSkipClock() *skipClock {
	return &skipClock{current: testEpoch}
}

func (c *skipClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *skipClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

func (c *skipClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func testConfig() config.ClientConfig {
	cfg := config.DefaultClientConfig
	cfg.BaseURL = testBaseURL
	cfg.Retry.Jitter = 0
	return cfg
}

type testClient struct {
	*Client
	transport *mocks.MockTransport
	auth      *mocks.MockAuthenticator
}

func newTestClient(t *testing.T, cfg config.ClientConfig, handler mocks.HandlerFunc, clk ratelimit.Clock) *testClient {
	t.Helper()
	mt := mocks.NewMockTransport(handler)
	auth := mocks.NewMockAuthenticator("test-token")
	opts := []ClientOption{WithTransport(mt), WithAuthenticator(auth)}
	if clk != nil {
		opts = append(opts, WithClock(clk))
	}
	c, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return &testClient{Client: c, transport: mt, auth: auth}
}

// route answers requests by "METHOD suffix", where suffix is matched against
// the decoded path after /spreadsheets/{id}.
type route map[string]mocks.HandlerFunc

func (r route) handle(req *transport.Request) (*transport.Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	path := u.Path
	if i := strings.Index(path, "/spreadsheets/"); i >= 0 {
		path = path[i+len("/spreadsheets/"):]
		if j := strings.IndexAny(path, "/:"); j >= 0 {
			path = path[j:]
		} else {
			path = ""
		}
	}
	if h, ok := r[req.Method+" "+path]; ok {
		return h(req)
	}
	return mocks.ErrorResponse(http.StatusNotFound, "notFound", "no route for "+req.Method+" "+path), nil
}

func respond(status int, body interface{}) mocks.HandlerFunc {
	return func(*transport.Request) (*transport.Response, error) {
		return mocks.JSONResponse(status, body), nil
	}
}

// spreadsheetBody is a spreadsheets.get payload with one sheet per title.
func spreadsheetBody(titles ...string) map[string]interface{} {
	var list []map[string]interface{}
	for i, title := range titles {
		list = append(list, map[string]interface{}{
			"properties": map[string]interface{}{
				"sheetId": i,
				"title":   title,
				"index":   i,
				"gridProperties": map[string]interface{}{
					"rowCount":    1000,
					"columnCount": 26,
				},
			},
		})
	}
	return map[string]interface{}{
		"spreadsheetId": testSpreadsheetID,
		"properties":    map[string]interface{}{"title": "Test"},
		"sheets":        list,
	}
}

func parseURL(t *testing.T, req *transport.Request) *url.URL {
	t.Helper()
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("Invalid request URL %q: %v", req.URL, err)
	}
	return u
}
