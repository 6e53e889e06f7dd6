package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/schema"
	"sheets_quota_client/internal/ratelimit"
)

// Rows and columns added beyond what EnsureSheetCapacity is asked for.
const (
	rowGrowthBuffer    = 100
	columnGrowthBuffer = 10
)

const spreadsheetFields = "spreadsheetId,properties.title,sheets.properties"

// GetSpreadsheet fetches spreadsheet and sheet properties and refreshes the
// cached sheet table used to check structural requests.
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (schema.Spreadsheet, error) {
	const op = "spreadsheets.get"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.Spreadsheet{}, err
	}

	var resp sheets.Spreadsheet
	err := c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolRead,
		method:        http.MethodGet,
		spreadsheetID: spreadsheetID,
		query:         url.Values{"fields": []string{spreadsheetFields}},
		idempotent:    true,
	}, nil, &resp)
	if err != nil {
		return schema.Spreadsheet{}, err
	}

	s := schema.SpreadsheetFromWire(&resp)
	if s.SpreadsheetID == "" {
		s.SpreadsheetID = spreadsheetID
	}
	c.storeTable(spreadsheetID, s.Table())
	return s, nil
}

// BatchUpdateSpreadsheet applies structural requests as one atomic call, so it
// is never split regardless of MaxBatchSize. Replies line up with reqs.
func (c *Client) BatchUpdateSpreadsheet(ctx context.Context, spreadsheetID string, reqs []schema.Request) (schema.BatchUpdateSpreadsheetResponse, error) {
	replies, err := c.batchUpdateSpreadsheet(ctx, spreadsheetID, reqs)
	if err != nil {
		return schema.BatchUpdateSpreadsheetResponse{}, err
	}
	return schema.BatchUpdateSpreadsheetResponse{SpreadsheetID: spreadsheetID, Replies: replies}, nil
}

func (c *Client) batchUpdateSpreadsheet(ctx context.Context, spreadsheetID string, reqs []schema.Request) ([]schema.Reply, error) {
	const op = "spreadsheets.batchUpdate"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return nil, err
	}
	encoded, err := schema.EncodeRequests(reqs)
	if err != nil {
		return nil, err
	}
	if c.cfg.ValidateSheetIDs && referencesSheets(reqs) {
		table, err := c.sheetTable(ctx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		if err := schema.ValidateSheetRefs(reqs, table); err != nil {
			return nil, err
		}
	}

	var resp sheets.BatchUpdateSpreadsheetResponse
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolBatchUpdate,
		method:        http.MethodPost,
		spreadsheetID: spreadsheetID,
		path:          ":batchUpdate",
		idempotent:    true,
	}, &sheets.BatchUpdateSpreadsheetRequest{Requests: encoded}, &resp)
	// Any structural change may rename, add or drop sheets.
	c.invalidateTable(spreadsheetID)
	if err != nil {
		return nil, err
	}

	replies := schema.BatchUpdateSpreadsheetResponseFromWire(&resp).Replies
	for len(replies) < len(reqs) {
		replies = append(replies, schema.Reply{})
	}
	return replies, nil
}

func referencesSheets(reqs []schema.Request) bool {
	for _, r := range reqs {
		if refs, _ := schema.SheetRefs(r); len(refs) > 0 {
			return true
		}
	}
	return false
}

// CopySheetTo copies one sheet into another spreadsheet and returns the new
// sheet's properties. Each call creates a new sheet, so it is not retried.
func (c *Client) CopySheetTo(ctx context.Context, spreadsheetID string, sheetID int64, destinationSpreadsheetID string) (schema.SheetProperties, error) {
	const op = "sheets.copyTo"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.SheetProperties{}, err
	}
	if err := checkSpreadsheetID(op, destinationSpreadsheetID); err != nil {
		return schema.SheetProperties{}, err
	}
	if sheetID < 0 {
		return schema.SheetProperties{}, apierr.New(apierr.KindSchemaValidation, op, "sheetId %d is negative", sheetID)
	}

	var resp sheets.SheetProperties
	err := c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolWrite,
		method:        http.MethodPost,
		spreadsheetID: spreadsheetID,
		path:          "/sheets/" + strconv.FormatInt(sheetID, 10) + ":copyTo",
	}, &sheets.CopySheetToAnotherSpreadsheetRequest{DestinationSpreadsheetId: destinationSpreadsheetID}, &resp)
	c.invalidateTable(destinationSpreadsheetID)
	if err != nil {
		return schema.SheetProperties{}, err
	}
	return schema.SheetPropertiesFromWire(&resp), nil
}

// SheetExists checks if a sheet with the given name exists in the spreadsheet
func (c *Client) SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	spreadsheet, err := c.GetSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	_, ok := spreadsheet.Sheet(sheetName)
	return ok, nil
}

// CreateSheet creates a new sheet with the specified name
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) (schema.SheetProperties, error) {
	resp, err := c.BatchUpdateSpreadsheet(ctx, spreadsheetID, []schema.Request{schema.AddSheet{Title: sheetName}})
	if err != nil {
		return schema.SheetProperties{}, fmt.Errorf("failed to create sheet %s: %w", sheetName, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].Sheet == nil {
		return schema.SheetProperties{Title: sheetName}, nil
	}
	return *resp.Replies[0].Sheet, nil
}

// EnsureSheetCapacity ensures the sheet has at least the required number of rows and columns.
// Automatically adds a buffer for future growth.
func (c *Client) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	spreadsheet, err := c.GetSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	target, ok := spreadsheet.Sheet(sheetName)
	if !ok {
		return apierr.New(apierr.KindNotFound, "EnsureSheetCapacity", "sheet %s not found", sheetName)
	}

	currentRows := target.RowCount
	currentCols := target.ColumnCount

	update := schema.UpdateSheetProperties{SheetID: target.SheetID}
	if int64(requiredRows) > currentRows {
		rows := int64(requiredRows + rowGrowthBuffer)
		update.RowCount = &rows
	}
	if int64(requiredCols) > currentCols {
		cols := int64(requiredCols + columnGrowthBuffer)
		update.ColumnCount = &cols
	}

	if update.RowCount == nil && update.ColumnCount == nil {
		return nil
	}

	log.Debug().
		Str("sheet_name", sheetName).
		Int64("current_rows", currentRows).
		Int64("current_cols", currentCols).
		Int("required_rows", requiredRows).
		Int("required_cols", requiredCols).
		Msg("Expanding sheet capacity")

	if _, err := c.BatchUpdateSpreadsheet(ctx, spreadsheetID, []schema.Request{update}); err != nil {
		return fmt.Errorf("failed to resize sheet %s: %w", sheetName, err)
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int64("sheet_id", target.SheetID).
		Msg("Successfully expanded sheet capacity")

	return nil
}
