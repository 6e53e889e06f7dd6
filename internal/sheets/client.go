package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/config"
	"sheets_quota_client/internal/domain/a1"
	"sheets_quota_client/internal/ratelimit"
	"sheets_quota_client/internal/transport"
)

// Client implements the SheetsAPI interface on top of an injected transport.
//
// Every call passes through the quota pool for its endpoint and the retry
// controller, so one Client should be shared by all callers of a project.
type Client struct {
	cfg        config.ClientConfig
	transport  transport.Transport
	auth       transport.Authenticator
	clock      ratelimit.Clock
	controller *ratelimit.Controller
	tracker    *CallTracker

	tablesMu   sync.Mutex
	tables     map[string]*a1.SheetTable
	tableGroup singleflight.Group
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransport replaces the default net/http transport.
func WithTransport(t transport.Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithAuthenticator sets the credential source. Required.
func WithAuthenticator(a transport.Authenticator) ClientOption {
	return func(c *Client) {
		c.auth = a
	}
}

// WithClock drives quota windows and backoff from clk instead of the wall clock.
func WithClock(clk ratelimit.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clk
	}
}

// NewClient creates a Sheets client with the given configuration.
func NewClient(cfg config.ClientConfig, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	c := &Client{
		cfg:    cfg,
		tables: make(map[string]*a1.SheetTable),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.auth == nil {
		return nil, fmt.Errorf("an authenticator is required")
	}
	if c.transport == nil {
		c.transport = transport.NewHTTPTransport(nil, 0)
	}

	var limiter *ratelimit.Limiter
	if c.clock != nil {
		limiter = ratelimit.NewLimiterWithClock(c.clock, cfg.Quota)
	} else {
		limiter = ratelimit.NewLimiter(cfg.Quota)
	}
	c.clock = limiter.Clock()
	c.controller = ratelimit.NewController(limiter, cfg.Retry)
	c.tracker = NewCallTracker(c.clock)

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Int("read_quota", cfg.Quota.ReadPerMinute).
		Int("write_quota", cfg.Quota.WritePerMinute).
		Int("max_batch_size", cfg.MaxBatchSize).
		Int("max_retries", cfg.Retry.MaxRetries).
		Msg("Sheets client created")

	return c, nil
}

// NewClientFromCredentials creates a client authenticated with a service account key file.
func NewClientFromCredentials(ctx context.Context, cfg config.ClientConfig, credentialsFile string, opts ...ClientOption) (*Client, error) {
	auth, err := transport.NewCredentialsFileAuthenticator(ctx, credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return NewClient(cfg, append([]ClientOption{WithAuthenticator(auth)}, opts...)...)
}

// PoolState reports the dispatch state of one quota pool.
func (c *Client) PoolState(p ratelimit.Pool) ratelimit.State {
	return c.controller.Limiter().Pool(p).State()
}

// call describes one endpoint invocation.
type call struct {
	op            string
	pool          ratelimit.Pool
	method        string
	spreadsheetID string
	path          string // appended to spreadsheets/{id}
	query         url.Values
	idempotent    bool
}

func (c *Client) endpointURL(cl call) string {
	u := c.cfg.BaseURL + "spreadsheets/" + url.PathEscape(cl.spreadsheetID) + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	return u
}

// do sends in as JSON and decodes the response into out. Either may be nil.
func (c *Client) do(ctx context.Context, cl call, in, out interface{}) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apierr.Wrap(apierr.KindSchemaValidation, cl.op, err)
		}
		body = b
	}
	target := c.endpointURL(cl)

	return c.controller.Run(ctx, cl.pool, ratelimit.RunOptions{
		Op:         cl.op,
		Idempotent: cl.idempotent,
		Refresh:    c.auth.Refresh,
		OnRetry:    func(ratelimit.RetryState) { c.tracker.RecordRetry(cl.op) },
	}, func(ctx context.Context) error {
		req := transport.NewRequest(cl.method, target, body)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		if err := c.auth.Authorize(ctx, req); err != nil {
			return apierr.Wrap(apierr.KindAuthentication, cl.op, err)
		}

		c.tracker.RecordCall(cl.op, cl.pool)
		resp, err := c.transport.Send(ctx, req)
		if err != nil {
			return apierr.Network(cl.op, err)
		}
		if err := apierr.FromResponse(cl.op, resp.StatusCode, resp.Header, resp.Body); err != nil {
			return err
		}

		if out == nil || len(resp.Body) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return apierr.New(apierr.KindUnknown, cl.op, "failed to decode response: %v", err)
		}
		return nil
	})
}

func checkSpreadsheetID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierr.New(apierr.KindSchemaValidation, op, "spreadsheet id is required")
	}
	return nil
}

// sheetTable returns the cached title/id table, loading it once per spreadsheet
// even when several callers miss at the same time. The shared load outlives any
// one caller's cancellation; each caller stops waiting when its own ctx ends.
func (c *Client) sheetTable(ctx context.Context, spreadsheetID string) (*a1.SheetTable, error) {
	c.tablesMu.Lock()
	t, ok := c.tables[spreadsheetID]
	c.tablesMu.Unlock()
	if ok {
		return t, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.tableGroup.DoChan(spreadsheetID, func() (interface{}, error) {
		s, err := c.GetSpreadsheet(loadCtx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		return s.Table(), nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*a1.SheetTable), nil
	case <-ctx.Done():
		return nil, apierr.FromContext("spreadsheets.get", ctx.Err())
	}
}

func (c *Client) storeTable(spreadsheetID string, t *a1.SheetTable) {
	c.tablesMu.Lock()
	defer c.tablesMu.Unlock()
	c.tables[spreadsheetID] = t
}

func (c *Client) invalidateTable(spreadsheetID string) {
	c.tablesMu.Lock()
	defer c.tablesMu.Unlock()
	delete(c.tables, spreadsheetID)
}
