package sheets

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/batch"
	"sheets_quota_client/internal/domain/a1"
	"sheets_quota_client/internal/domain/schema"
	"sheets_quota_client/internal/ratelimit"
)

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func getQuery(opts schema.GetOptions) url.Values {
	q := url.Values{}
	setIf(q, "majorDimension", string(opts.MajorDimension))
	setIf(q, "valueRenderOption", string(opts.ValueRenderOption))
	setIf(q, "dateTimeRenderOption", string(opts.DateTimeRenderOption))
	return q
}

func writeQuery(opts schema.WriteOptions) url.Values {
	q := url.Values{}
	q.Set("valueInputOption", string(opts.ValueInputOption))
	if opts.IncludeValuesInResponse {
		q.Set("includeValuesInResponse", "true")
	}
	setIf(q, "responseValueRenderOption", string(opts.ResponseValueRenderOption))
	setIf(q, "responseDateTimeRenderOption", string(opts.ResponseDateTimeRenderOption))
	return q
}

// prepareValues validates data and rewrites its range in canonical form.
func prepareValues(data schema.ValueRange, pad bool) (schema.ValueRange, error) {
	if err := data.Validate(); err != nil {
		return data, err
	}
	normalized, err := a1.Normalize(data.Range)
	if err != nil {
		return data, err
	}
	data.Range = normalized
	if pad {
		data = data.Padded()
	}
	return data, nil
}

// GetValues reads one range.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string, opts schema.GetOptions) (schema.ValueRange, error) {
	const op = "values.get"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.ValueRange{}, err
	}
	if err := opts.Validate(); err != nil {
		return schema.ValueRange{}, err
	}
	normalized, err := a1.Normalize(rng)
	if err != nil {
		return schema.ValueRange{}, err
	}

	var resp sheets.ValueRange
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolRead,
		method:        http.MethodGet,
		spreadsheetID: spreadsheetID,
		path:          "/values/" + url.PathEscape(normalized),
		query:         getQuery(opts),
		idempotent:    true,
	}, nil, &resp)
	if err != nil {
		return schema.ValueRange{}, err
	}
	return schema.ValueRangeFromWire(&resp), nil
}

// UpdateValues writes data.Values into data.Range.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID string, data schema.ValueRange, opts schema.WriteOptions) (schema.UpdateValuesResponse, error) {
	const op = "values.update"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.UpdateValuesResponse{}, err
	}
	if err := opts.Validate(); err != nil {
		return schema.UpdateValuesResponse{}, err
	}
	data, err := prepareValues(data, opts.PadRaggedRows)
	if err != nil {
		return schema.UpdateValuesResponse{}, err
	}

	var resp sheets.UpdateValuesResponse
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPut,
		spreadsheetID: spreadsheetID,
		path:          "/values/" + url.PathEscape(data.Range),
		query:         writeQuery(opts),
		idempotent:    true,
	}, data.ToWire(), &resp)
	if err != nil {
		return schema.UpdateValuesResponse{}, err
	}
	return schema.UpdateValuesResponseFromWire(&resp), nil
}

// AppendValues appends data.Values after the table the server finds within
// data.Range. The returned TableRange is that table, which need not equal the
// range passed in. Appends are only retried when opts carries an IdempotencyKey.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID string, data schema.ValueRange, opts schema.AppendOptions) (schema.AppendValuesResponse, error) {
	const op = "values.append"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.AppendValuesResponse{}, err
	}
	if err := opts.Validate(); err != nil {
		return schema.AppendValuesResponse{}, err
	}
	data, err := prepareValues(data, opts.PadRaggedRows)
	if err != nil {
		return schema.AppendValuesResponse{}, err
	}

	query := writeQuery(opts.WriteOptions)
	setIf(query, "insertDataOption", string(opts.InsertDataOption))

	var resp sheets.AppendValuesResponse
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPost,
		spreadsheetID: spreadsheetID,
		path:          "/values/" + url.PathEscape(data.Range) + ":append",
		query:         query,
		idempotent:    opts.IdempotencyKey != "",
	}, data.ToWire(), &resp)
	if err != nil {
		return schema.AppendValuesResponse{}, err
	}

	out := schema.AppendValuesResponseFromWire(&resp)
	if out.TableRange != "" && out.TableRange != data.Range {
		log.Debug().
			Str("search_range", data.Range).
			Str("table_range", out.TableRange).
			Str("updated_range", out.Updates.UpdatedRange).
			Msg("Append located table outside search range")
	}
	return out, nil
}

// ClearValues clears values, keeping formatting.
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, rng string) (schema.ClearValuesResponse, error) {
	const op = "values.clear"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.ClearValuesResponse{}, err
	}
	normalized, err := a1.Normalize(rng)
	if err != nil {
		return schema.ClearValuesResponse{}, err
	}

	var resp sheets.ClearValuesResponse
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPost,
		spreadsheetID: spreadsheetID,
		path:          "/values/" + url.PathEscape(normalized) + ":clear",
		idempotent:    true,
	}, &sheets.ClearValuesRequest{}, &resp)
	if err != nil {
		return schema.ClearValuesResponse{}, err
	}
	return schema.ClearValuesResponse{SpreadsheetID: resp.SpreadsheetId, ClearedRange: resp.ClearedRange}, nil
}

// BatchGetValues reads many ranges. Ranges are sent in chunks of at most
// MaxBatchSize; a *batch.PartialError reports chunks that failed, and their
// slots in ValueRanges are left empty.
func (c *Client) BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string, opts schema.GetOptions) (schema.BatchGetValuesResponse, error) {
	const op = "values.batchGet"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.BatchGetValuesResponse{}, err
	}
	if len(ranges) == 0 {
		return schema.BatchGetValuesResponse{}, apierr.New(apierr.KindSchemaValidation, op, "at least one range is required")
	}

	agg := c.NewBatch(spreadsheetID)
	for _, r := range ranges {
		normalized, err := a1.Normalize(r)
		if err != nil {
			return schema.BatchGetValuesResponse{}, err
		}
		if _, err := agg.Submit(batch.GetOp{Range: normalized, Options: opts}); err != nil {
			return schema.BatchGetValuesResponse{}, err
		}
	}

	results, err := agg.Flush(ctx)
	out := schema.BatchGetValuesResponse{SpreadsheetID: spreadsheetID, ValueRanges: make([]schema.ValueRange, results.Len())}
	for i, res := range results.All() {
		if res.Values != nil {
			out.ValueRanges[i] = *res.Values
		}
	}
	return out, err
}

// BatchUpdateValues writes many ranges with one set of options. Per-range
// responses line up with data; a *batch.PartialError reports failed chunks.
func (c *Client) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []schema.ValueRange, opts schema.WriteOptions) (schema.BatchUpdateValuesResponse, error) {
	const op = "values.batchUpdate"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.BatchUpdateValuesResponse{}, err
	}
	if err := opts.Validate(); err != nil {
		return schema.BatchUpdateValuesResponse{}, err
	}
	if len(data) == 0 {
		return schema.BatchUpdateValuesResponse{}, apierr.New(apierr.KindSchemaValidation, op, "data is empty")
	}

	agg := c.NewBatch(spreadsheetID)
	for _, vr := range data {
		prepared, err := prepareValues(vr, false)
		if err != nil {
			return schema.BatchUpdateValuesResponse{}, err
		}
		if _, err := agg.Submit(batch.UpdateOp{Data: prepared, Options: opts}); err != nil {
			return schema.BatchUpdateValuesResponse{}, err
		}
	}

	results, err := agg.Flush(ctx)
	out := schema.BatchUpdateValuesResponse{SpreadsheetID: spreadsheetID, Responses: make([]schema.UpdateValuesResponse, results.Len())}
	sheetsTouched := map[string]bool{}
	for i, res := range results.All() {
		if res.Update == nil {
			continue
		}
		r := *res.Update
		out.Responses[i] = r
		out.TotalUpdatedRows += r.UpdatedRows
		out.TotalUpdatedColumns += r.UpdatedColumns
		out.TotalUpdatedCells += r.UpdatedCells
		if parsed, perr := a1.Parse(r.UpdatedRange); perr == nil && r.UpdatedCells > 0 {
			sheetsTouched[parsed.SheetName] = true
		}
	}
	out.TotalUpdatedSheets = int64(len(sheetsTouched))
	return out, err
}

// BatchClearValues clears many ranges. ClearedRanges lines up with ranges.
func (c *Client) BatchClearValues(ctx context.Context, spreadsheetID string, ranges []string) (schema.BatchClearValuesResponse, error) {
	const op = "values.batchClear"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.BatchClearValuesResponse{}, err
	}
	if len(ranges) == 0 {
		return schema.BatchClearValuesResponse{}, apierr.New(apierr.KindSchemaValidation, op, "at least one range is required")
	}

	agg := c.NewBatch(spreadsheetID)
	for _, r := range ranges {
		normalized, err := a1.Normalize(r)
		if err != nil {
			return schema.BatchClearValuesResponse{}, err
		}
		if _, err := agg.Submit(batch.ClearOp{Range: normalized}); err != nil {
			return schema.BatchClearValuesResponse{}, err
		}
	}

	results, err := agg.Flush(ctx)
	out := schema.BatchClearValuesResponse{SpreadsheetID: spreadsheetID, ClearedRanges: make([]string, results.Len())}
	for i, res := range results.All() {
		out.ClearedRanges[i] = res.ClearedRange
	}
	return out, err
}
