package sheets

import (
	"context"
	"net/http"
	"strconv"

	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/schema"
	"sheets_quota_client/internal/ratelimit"
)

// GetDeveloperMetadata fetches one metadata entry by id.
func (c *Client) GetDeveloperMetadata(ctx context.Context, spreadsheetID string, metadataID int64) (schema.DeveloperMetadata, error) {
	const op = "developerMetadata.get"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return schema.DeveloperMetadata{}, err
	}
	if metadataID < 0 {
		return schema.DeveloperMetadata{}, apierr.New(apierr.KindSchemaValidation, op, "metadataId %d is negative", metadataID)
	}

	var resp sheets.DeveloperMetadata
	err := c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolDeveloperMetadata,
		method:        http.MethodGet,
		spreadsheetID: spreadsheetID,
		path:          "/developerMetadata/" + strconv.FormatInt(metadataID, 10),
		idempotent:    true,
	}, nil, &resp)
	if err != nil {
		return schema.DeveloperMetadata{}, err
	}
	return schema.DeveloperMetadataFromWire(&resp), nil
}

// SearchDeveloperMetadata returns every entry matching any of filters.
func (c *Client) SearchDeveloperMetadata(ctx context.Context, spreadsheetID string, filters []schema.DataFilter) ([]schema.MatchedDeveloperMetadata, error) {
	const op = "developerMetadata.search"
	if err := checkSpreadsheetID(op, spreadsheetID); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, apierr.New(apierr.KindSchemaValidation, op, "at least one data filter is required")
	}
	wire, err := schema.DataFiltersToWire(filters)
	if err != nil {
		return nil, err
	}

	var resp sheets.SearchDeveloperMetadataResponse
	err = c.do(ctx, call{
		op:            op,
		pool:          ratelimit.PoolDeveloperMetadata,
		method:        http.MethodPost,
		spreadsheetID: spreadsheetID,
		path:          "/developerMetadata:search",
		idempotent:    true,
	}, &sheets.SearchDeveloperMetadataRequest{DataFilters: wire}, &resp)
	if err != nil {
		return nil, err
	}
	return schema.MatchedDeveloperMetadataFromWire(&resp), nil
}
