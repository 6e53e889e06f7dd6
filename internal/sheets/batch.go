package sheets

import (
	"context"
	"net/http"

	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/batch"
	"sheets_quota_client/internal/domain/schema"
	"sheets_quota_client/internal/ratelimit"
)

// NewBatch returns an aggregator bound to one spreadsheet. Submit operations
// from any goroutine, then Flush to send them in as few requests as possible.
func (c *Client) NewBatch(spreadsheetID string) *batch.Aggregator {
	return batch.NewAggregator(&dispatcher{client: c, spreadsheetID: spreadsheetID}, c.cfg.MaxBatchSize)
}

// dispatcher sends aggregated chunks through the client's endpoints.
type dispatcher struct {
	client        *Client
	spreadsheetID string
}

func (d *dispatcher) BatchGet(ctx context.Context, ranges []string, opts schema.GetOptions) ([]schema.ValueRange, error) {
	query := getQuery(opts)
	query["ranges"] = ranges

	var resp sheets.BatchGetValuesResponse
	err := d.client.do(ctx, call{
		op:            "values.batchGet",
		pool:          ratelimit.PoolRead,
		method:        http.MethodGet,
		spreadsheetID: d.spreadsheetID,
		path:          "/values:batchGet",
		query:         query,
		idempotent:    true,
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	return schema.BatchGetValuesResponseFromWire(&resp).ValueRanges, nil
}

func (d *dispatcher) BatchUpdate(ctx context.Context, data []schema.ValueRange, opts schema.WriteOptions) ([]schema.UpdateValuesResponse, error) {
	req, err := schema.BatchUpdateValuesRequest(data, opts)
	if err != nil {
		return nil, err
	}

	var resp sheets.BatchUpdateValuesResponse
	err = d.client.do(ctx, call{
		op:            "values.batchUpdate",
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPost,
		spreadsheetID: d.spreadsheetID,
		path:          "/values:batchUpdate",
		idempotent:    true,
	}, req, &resp)
	if err != nil {
		return nil, err
	}
	return schema.BatchUpdateValuesResponseFromWire(&resp).Responses, nil
}

func (d *dispatcher) BatchClear(ctx context.Context, ranges []string) ([]string, error) {
	var resp sheets.BatchClearValuesResponse
	err := d.client.do(ctx, call{
		op:            "values.batchClear",
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPost,
		spreadsheetID: d.spreadsheetID,
		path:          "/values:batchClear",
		idempotent:    true,
	}, &sheets.BatchClearValuesRequest{Ranges: ranges}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ClearedRanges, nil
}

func (d *dispatcher) Append(ctx context.Context, data schema.ValueRange, opts schema.AppendOptions) (schema.AppendValuesResponse, error) {
	return d.client.AppendValues(ctx, d.spreadsheetID, data, opts)
}

func (d *dispatcher) Structural(ctx context.Context, reqs []schema.Request) ([]schema.Reply, error) {
	return d.client.batchUpdateSpreadsheet(ctx, d.spreadsheetID, reqs)
}

var _ batch.Dispatcher = (*dispatcher)(nil)
