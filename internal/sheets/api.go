package sheets

import (
	"context"

	"sheets_quota_client/internal/batch"
	"sheets_quota_client/internal/domain/schema"
)

// SheetsAPI defines the operations offered by the Sheets client.
// Callers depend on this interface so they can be tested without a transport.
//
// Every method either returns a typed result or fails with an *apierr.Error.
// The Batch* methods may instead return a *batch.PartialError alongside a
// result in which only the failed positions are empty.
type SheetsAPI interface {
	// GetValues reads one range.
	GetValues(ctx context.Context, spreadsheetID, rng string, opts schema.GetOptions) (schema.ValueRange, error)

	// UpdateValues overwrites one range.
	UpdateValues(ctx context.Context, spreadsheetID string, data schema.ValueRange, opts schema.WriteOptions) (schema.UpdateValuesResponse, error)

	// AppendValues appends after the table found within the search range.
	AppendValues(ctx context.Context, spreadsheetID string, data schema.ValueRange, opts schema.AppendOptions) (schema.AppendValuesResponse, error)

	// ClearValues clears all values in a range
	ClearValues(ctx context.Context, spreadsheetID, rng string) (schema.ClearValuesResponse, error)

	BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string, opts schema.GetOptions) (schema.BatchGetValuesResponse, error)
	BatchUpdateValues(ctx context.Context, spreadsheetID string, data []schema.ValueRange, opts schema.WriteOptions) (schema.BatchUpdateValuesResponse, error)
	BatchClearValues(ctx context.Context, spreadsheetID string, ranges []string) (schema.BatchClearValuesResponse, error)

	// BatchUpdateSpreadsheet applies structural requests atomically.
	BatchUpdateSpreadsheet(ctx context.Context, spreadsheetID string, reqs []schema.Request) (schema.BatchUpdateSpreadsheetResponse, error)

	GetDeveloperMetadata(ctx context.Context, spreadsheetID string, metadataID int64) (schema.DeveloperMetadata, error)
	SearchDeveloperMetadata(ctx context.Context, spreadsheetID string, filters []schema.DataFilter) ([]schema.MatchedDeveloperMetadata, error)

	// CopySheetTo copies a sheet into another spreadsheet
	CopySheetTo(ctx context.Context, spreadsheetID string, sheetID int64, destinationSpreadsheetID string) (schema.SheetProperties, error)

	// GetSpreadsheet returns spreadsheet and sheet properties
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (schema.Spreadsheet, error)

	// NewBatch starts a caller-driven batch for one spreadsheet
	NewBatch(spreadsheetID string) *batch.Aggregator

	// CreateSheet creates a new sheet in the spreadsheet
	CreateSheet(ctx context.Context, spreadsheetID, sheetName string) (schema.SheetProperties, error)

	// SheetExists checks if a sheet with the given name exists
	SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error)

	// EnsureSheetCapacity ensures a sheet has at least the required number of rows and columns
	EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error

	// LogSessionSummary logs how many calls were made per endpoint and pool
	LogSessionSummary(ctx context.Context)
}

var _ SheetsAPI = (*Client)(nil)
