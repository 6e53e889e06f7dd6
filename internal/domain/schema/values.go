package schema

import (
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/a1"
)

// ValueRange is a block of cells addressed by an A1 range.
// Rows may be ragged; Padded makes the padding explicit.
type ValueRange struct {
	Range          string
	MajorDimension MajorDimension
	Values         [][]Cell
}

// Validate checks the range syntax and the major dimension.
func (v ValueRange) Validate() error {
	if v.Range == "" {
		return required("ValueRange", "range")
	}
	if _, err := a1.Parse(v.Range); err != nil {
		return err
	}
	return v.MajorDimension.Validate()
}

// Width returns the length of the longest row.
func (v ValueRange) Width() int {
	w := 0
	for _, row := range v.Values {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// IsRagged reports whether rows differ in length.
func (v ValueRange) IsRagged() bool {
	w := v.Width()
	for _, row := range v.Values {
		if len(row) != w {
			return true
		}
	}
	return false
}

// Padded returns a copy whose short rows are filled with empty cells up to Width.
// Unpadded short rows leave the trailing cells of the target range untouched on write.
func (v ValueRange) Padded() ValueRange {
	w := v.Width()
	out := ValueRange{Range: v.Range, MajorDimension: v.MajorDimension, Values: make([][]Cell, len(v.Values))}
	for i, row := range v.Values {
		padded := make([]Cell, w)
		copy(padded, row)
		out.Values[i] = padded
	}
	return out
}

// CellCount returns the number of cells carried, counting each row's own length.
func (v ValueRange) CellCount() int {
	n := 0
	for _, row := range v.Values {
		n += len(row)
	}
	return n
}

// Strings renders every cell as text.
func (v ValueRange) Strings() [][]string {
	out := make([][]string, len(v.Values))
	for i, row := range v.Values {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.String()
		}
	}
	return out
}

// ToWire converts to the API struct.
func (v ValueRange) ToWire() *sheets.ValueRange {
	values := make([][]interface{}, len(v.Values))
	for i, row := range v.Values {
		values[i] = make([]interface{}, len(row))
		for j, c := range row {
			values[i][j] = c.Raw()
		}
	}
	return &sheets.ValueRange{
		Range:          v.Range,
		MajorDimension: string(v.MajorDimension),
		Values:         values,
	}
}

// ValueRangeFromWire converts from the API struct. A nil input yields an empty ValueRange.
func ValueRangeFromWire(w *sheets.ValueRange) ValueRange {
	if w == nil {
		return ValueRange{}
	}
	out := ValueRange{
		Range:          w.Range,
		MajorDimension: MajorDimension(w.MajorDimension),
		Values:         make([][]Cell, len(w.Values)),
	}
	for i, row := range w.Values {
		out.Values[i] = make([]Cell, len(row))
		for j, raw := range row {
			out.Values[i][j] = CellFromRaw(raw)
		}
	}
	return out
}

// GetOptions controls how values are read.
type GetOptions struct {
	MajorDimension       MajorDimension
	ValueRenderOption    ValueRenderOption
	DateTimeRenderOption DateTimeRenderOption
}

func (o GetOptions) Validate() error {
	return firstErr(o.MajorDimension.Validate(), o.ValueRenderOption.Validate(), o.DateTimeRenderOption.Validate())
}

// WriteOptions controls how values are written. ValueInputOption is required.
type WriteOptions struct {
	ValueInputOption             ValueInputOption
	IncludeValuesInResponse      bool
	ResponseValueRenderOption    ValueRenderOption
	ResponseDateTimeRenderOption DateTimeRenderOption
	// PadRaggedRows fills short rows with blanks so they overwrite the whole target width.
	PadRaggedRows bool
}

func (o WriteOptions) Validate() error {
	return firstErr(o.ValueInputOption.Validate(), o.ResponseValueRenderOption.Validate(), o.ResponseDateTimeRenderOption.Validate())
}

// AppendOptions controls values.append.
type AppendOptions struct {
	WriteOptions
	InsertDataOption InsertDataOption
	// IdempotencyKey opts the append into automatic retries. The caller asserts
	// that repeating the call under this key cannot duplicate rows.
	IdempotencyKey string
}

func (o AppendOptions) Validate() error {
	return firstErr(o.WriteOptions.Validate(), o.InsertDataOption.Validate())
}

// UpdateValuesResponse reports the outcome of one range write.
type UpdateValuesResponse struct {
	SpreadsheetID  string
	UpdatedRange   string
	UpdatedRows    int64
	UpdatedColumns int64
	UpdatedCells   int64
	UpdatedData    *ValueRange
}

func UpdateValuesResponseFromWire(w *sheets.UpdateValuesResponse) UpdateValuesResponse {
	if w == nil {
		return UpdateValuesResponse{}
	}
	out := UpdateValuesResponse{
		SpreadsheetID:  w.SpreadsheetId,
		UpdatedRange:   w.UpdatedRange,
		UpdatedRows:    w.UpdatedRows,
		UpdatedColumns: w.UpdatedColumns,
		UpdatedCells:   w.UpdatedCells,
	}
	if w.UpdatedData != nil {
		data := ValueRangeFromWire(w.UpdatedData)
		out.UpdatedData = &data
	}
	return out
}

// AppendValuesResponse reports an append. TableRange is the table the server
// located from the search range and may differ from the range passed in.
type AppendValuesResponse struct {
	SpreadsheetID string
	TableRange    string
	Updates       UpdateValuesResponse
}

func AppendValuesResponseFromWire(w *sheets.AppendValuesResponse) AppendValuesResponse {
	if w == nil {
		return AppendValuesResponse{}
	}
	return AppendValuesResponse{
		SpreadsheetID: w.SpreadsheetId,
		TableRange:    w.TableRange,
		Updates:       UpdateValuesResponseFromWire(w.Updates),
	}
}

type BatchGetValuesResponse struct {
	SpreadsheetID string
	ValueRanges   []ValueRange
}

func BatchGetValuesResponseFromWire(w *sheets.BatchGetValuesResponse) BatchGetValuesResponse {
	if w == nil {
		return BatchGetValuesResponse{}
	}
	out := BatchGetValuesResponse{SpreadsheetID: w.SpreadsheetId, ValueRanges: make([]ValueRange, len(w.ValueRanges))}
	for i, vr := range w.ValueRanges {
		out.ValueRanges[i] = ValueRangeFromWire(vr)
	}
	return out
}

type BatchUpdateValuesResponse struct {
	SpreadsheetID       string
	TotalUpdatedRows    int64
	TotalUpdatedColumns int64
	TotalUpdatedCells   int64
	TotalUpdatedSheets  int64
	Responses           []UpdateValuesResponse
}

func BatchUpdateValuesResponseFromWire(w *sheets.BatchUpdateValuesResponse) BatchUpdateValuesResponse {
	if w == nil {
		return BatchUpdateValuesResponse{}
	}
	out := BatchUpdateValuesResponse{
		SpreadsheetID:       w.SpreadsheetId,
		TotalUpdatedRows:    w.TotalUpdatedRows,
		TotalUpdatedColumns: w.TotalUpdatedColumns,
		TotalUpdatedCells:   w.TotalUpdatedCells,
		TotalUpdatedSheets:  w.TotalUpdatedSheets,
		Responses:           make([]UpdateValuesResponse, len(w.Responses)),
	}
	for i, r := range w.Responses {
		out.Responses[i] = UpdateValuesResponseFromWire(r)
	}
	return out
}

type ClearValuesResponse struct {
	SpreadsheetID string
	ClearedRange  string
}

type BatchClearValuesResponse struct {
	SpreadsheetID string
	ClearedRanges []string
}

// BatchUpdateValuesRequest builds the values:batchUpdate body.
func BatchUpdateValuesRequest(data []ValueRange, opts WriteOptions) (*sheets.BatchUpdateValuesRequest, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apierr.New(apierr.KindSchemaValidation, "BatchUpdateValuesRequest", "data is empty")
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption:             string(opts.ValueInputOption),
		IncludeValuesInResponse:      opts.IncludeValuesInResponse,
		ResponseValueRenderOption:    string(opts.ResponseValueRenderOption),
		ResponseDateTimeRenderOption: string(opts.ResponseDateTimeRenderOption),
	}
	for _, vr := range data {
		if err := vr.Validate(); err != nil {
			return nil, err
		}
		if opts.PadRaggedRows {
			vr = vr.Padded()
		}
		req.Data = append(req.Data, vr.ToWire())
	}
	return req, nil
}
