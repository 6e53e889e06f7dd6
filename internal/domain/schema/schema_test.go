package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/a1"
)

func wireJSON(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func TestNewCell(t *testing.T) {
	t.Run("single variant", func(t *testing.T) {
		c, err := NewCell(CellValue{Number: numPtr(42)})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if c.Kind() != CellNumber || c.Int() != 42 {
			t.Errorf("Expected number 42, got %v %v", c.Kind(), c)
		}
	})

	t.Run("no variant is empty", func(t *testing.T) {
		c, err := NewCell(CellValue{})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !c.IsEmpty() {
			t.Errorf("Expected empty cell, got %v", c.Kind())
		}
	})

	t.Run("two variants rejected", func(t *testing.T) {
		_, err := NewCell(CellValue{String: strPtr("x"), Bool: boolPtr(true)})
		if !errors.Is(err, apierr.ErrInvalidCellValue) {
			t.Errorf("Expected InvalidCellValueError, got %v", err)
		}
	})

	t.Run("formula without equals rejected", func(t *testing.T) {
		_, err := NewCell(CellValue{Formula: strPtr("SUM(A1:A2)")})
		if !errors.Is(err, apierr.ErrInvalidCellValue) {
			t.Errorf("Expected InvalidCellValueError, got %v", err)
		}
	})
}

func TestCellAccessors(t *testing.T) {
	testCases := []struct {
		name    string
		cell    Cell
		str     string
		i64     int64
		empty   bool
		boolean bool
	}{
		{"empty", CellFromRaw(nil), "", 0, true, false},
		{"blank string", CellFromRaw(""), "", 0, true, false},
		{"numeric string", CellFromRaw("123"), "123", 123, false, false},
		{"float", CellFromRaw(float64(12.5)), "12.5", 12, false, true},
		{"bool", CellFromRaw(true), "TRUE", 1, false, true},
		{"text bool", CellFromRaw("true"), "true", 0, false, true},
		{"formula", FormulaCell("=A1+1"), "=A1+1", 0, false, false},
		{"json number", CellFromRaw(json.Number("7")), "7", 7, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cell.String(); got != tc.str {
				t.Errorf("Expected String %q, got %q", tc.str, got)
			}
			if got := tc.cell.Int64(); got != tc.i64 {
				t.Errorf("Expected Int64 %d, got %d", tc.i64, got)
			}
			if got := tc.cell.IsEmpty(); got != tc.empty {
				t.Errorf("Expected IsEmpty %v, got %v", tc.empty, got)
			}
			if got := tc.cell.Bool(); got != tc.boolean {
				t.Errorf("Expected Bool %v, got %v", tc.boolean, got)
			}
		})
	}

	if EmptyCell().Int64Ptr() != nil {
		t.Error("Expected nil Int64Ptr for empty cell")
	}
	if p := NumberCell(0).Int64Ptr(); p == nil || *p != 0 {
		t.Errorf("Expected pointer to 0 for numeric zero, got %v", p)
	}
}

func TestCellExtendedValueHasOneVariant(t *testing.T) {
	cells := []Cell{StringCell("a"), NumberCell(1), BoolCell(false), FormulaCell("=1")}
	for _, c := range cells {
		m := wireJSON(t, c.ExtendedValue())
		if len(m) != 1 {
			t.Errorf("Expected exactly one variant for %v, got %v", c.Kind(), m)
		}
	}
	if EmptyCell().ExtendedValue() != nil {
		t.Error("Expected nil ExtendedValue for empty cell")
	}
}

func TestEnumValidation(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		valid bool
	}{
		{"major rows", MajorDimension("ROWS").Validate(), true},
		{"major default", MajorDimension("").Validate(), true},
		{"major lowercase", MajorDimension("rows").Validate(), false},
		{"input raw", ValueInputOption("RAW").Validate(), true},
		{"input unset", ValueInputOption("").Validate(), false},
		{"input unknown", ValueInputOption("INPUT_VALUE_OPTION_UNSPECIFIED").Validate(), false},
		{"render formula", ValueRenderOption("FORMULA").Validate(), true},
		{"render bogus", ValueRenderOption("RAW").Validate(), false},
		{"datetime serial", DateTimeRenderOption("SERIAL_NUMBER").Validate(), true},
		{"insert rows", InsertDataOption("INSERT_ROWS").Validate(), true},
		{"insert bogus", InsertDataOption("APPEND").Validate(), false},
		{"dimension unset", Dimension("").Validate(), false},
		{"merge rows", MergeType("MERGE_ROWS").Validate(), true},
		{"sort bogus", SortOrder("UP").Validate(), false},
		{"visibility project", MetadataVisibility("PROJECT").Validate(), true},
		{"location sheet", MetadataLocationType("SHEET").Validate(), true},
		{"matching bogus", LocationMatchingStrategy("FUZZY").Validate(), false},
		{"paste transpose", PasteOrientation("TRANSPOSE").Validate(), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.valid && tc.err != nil {
				t.Errorf("Expected valid, got %v", tc.err)
			}
			if !tc.valid && !errors.Is(tc.err, apierr.ErrSchemaValidation) {
				t.Errorf("Expected SchemaValidationError, got %v", tc.err)
			}
		})
	}
}

func TestWriteOptionsRequireValueInputOption(t *testing.T) {
	if err := (WriteOptions{}).Validate(); !errors.Is(err, apierr.ErrSchemaValidation) {
		t.Errorf("Expected SchemaValidationError, got %v", err)
	}
	if err := (AppendOptions{InsertDataOption: InsertRows}).Validate(); !errors.Is(err, apierr.ErrSchemaValidation) {
		t.Errorf("Expected SchemaValidationError for append without valueInputOption, got %v", err)
	}
	if err := (AppendOptions{WriteOptions: WriteOptions{ValueInputOption: ValueInputRaw}}).Validate(); err != nil {
		t.Errorf("Expected valid append options, got %v", err)
	}
}

func TestValueRangeWire(t *testing.T) {
	vr := ValueRange{
		Range:          "Sheet1!A1:B2",
		MajorDimension: MajorDimensionRows,
		Values:         [][]Cell{{StringCell("x"), NumberCell(1.5)}, {BoolCell(true), EmptyCell()}},
	}

	expected := map[string]interface{}{
		"range":          "Sheet1!A1:B2",
		"majorDimension": "ROWS",
		"values":         []interface{}{[]interface{}{"x", 1.5}, []interface{}{true, ""}},
	}
	if diff := cmp.Diff(expected, wireJSON(t, vr.ToWire())); diff != "" {
		t.Errorf("wire mismatch (-want +got):\n%s", diff)
	}

	back := ValueRangeFromWire(vr.ToWire())
	if diff := cmp.Diff(vr.Strings(), back.Strings()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValueRangeRaggedRows(t *testing.T) {
	vr := ValueRange{Range: "A1:C3", Values: StringRows([][]string{{"a", "b", "c"}, {"d"}, {}})}

	if !vr.IsRagged() {
		t.Fatal("Expected ragged rows")
	}
	if vr.CellCount() != 4 {
		t.Errorf("Expected 4 cells, got %d", vr.CellCount())
	}

	padded := vr.Padded()
	if padded.IsRagged() {
		t.Error("Expected padded range not to be ragged")
	}
	if padded.CellCount() != 9 {
		t.Errorf("Expected 9 cells after padding, got %d", padded.CellCount())
	}
	if len(vr.Values[1]) != 1 {
		t.Error("Padded must not modify the original rows")
	}
}

func TestBatchUpdateValuesRequest(t *testing.T) {
	data := []ValueRange{
		{Range: "Sheet1!A1:B1", Values: StringRows([][]string{{"a", "b"}})},
		{Range: "Sheet1!A2:C3", Values: StringRows([][]string{{"c"}, {"d", "e", "f"}})},
	}

	req, err := BatchUpdateValuesRequest(data, WriteOptions{ValueInputOption: ValueInputUserEntered, PadRaggedRows: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.ValueInputOption != "USER_ENTERED" {
		t.Errorf("Expected USER_ENTERED, got %q", req.ValueInputOption)
	}
	if len(req.Data) != 2 || req.Data[0].Range != "Sheet1!A1:B1" || req.Data[1].Range != "Sheet1!A2:C3" {
		t.Fatalf("Expected data in submission order, got %+v", req.Data)
	}
	if len(req.Data[1].Values[0]) != 3 {
		t.Errorf("Expected padded first row of 3 cells, got %d", len(req.Data[1].Values[0]))
	}

	if _, err := BatchUpdateValuesRequest(data, WriteOptions{}); !errors.Is(err, apierr.ErrSchemaValidation) {
		t.Errorf("Expected SchemaValidationError without valueInputOption, got %v", err)
	}
	bad := []ValueRange{{Range: "Sheet1!B1:A2"}}
	if _, err := BatchUpdateValuesRequest(bad, WriteOptions{ValueInputOption: ValueInputRaw}); !errors.Is(err, apierr.ErrRangeSyntax) {
		t.Errorf("Expected RangeSyntaxError for inverted range, got %v", err)
	}
}

func TestGridRangeWireForcesZeroIndices(t *testing.T) {
	got := wireJSON(t, GridRangeToWire(a1.Bounded(0, 0, 1, 0, 2)))
	expected := map[string]interface{}{
		"sheetId":          float64(0),
		"startRowIndex":    float64(0),
		"endRowIndex":      float64(1),
		"startColumnIndex": float64(0),
		"endColumnIndex":   float64(2),
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("wire mismatch (-want +got):\n%s", diff)
	}

	open := wireJSON(t, GridRangeToWire(a1.GridRange{SheetID: 5, StartCol: a1.Idx(0), EndCol: a1.Idx(1)}))
	if _, ok := open["startRowIndex"]; ok {
		t.Errorf("Expected open row bounds to be omitted, got %v", open)
	}
}

func TestDataFilterExactlyOne(t *testing.T) {
	g := a1.Bounded(0, 0, 1, 0, 1)
	testCases := []struct {
		name   string
		filter DataFilter
		valid  bool
	}{
		{"a1", DataFilter{A1Range: "Sheet1!A1"}, true},
		{"grid", DataFilter{GridRange: &g}, true},
		{"lookup", DataFilter{Lookup: &MetadataLookup{Key: "owner"}}, true},
		{"none", DataFilter{}, false},
		{"two", DataFilter{A1Range: "A1", GridRange: &g}, false},
		{"empty lookup", DataFilter{Lookup: &MetadataLookup{}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.valid != (err == nil) {
				t.Errorf("Expected valid=%v, got %v", tc.valid, err)
			}
		})
	}
}

func TestMetadataValidateForCreate(t *testing.T) {
	ok := DeveloperMetadata{Key: "k", Visibility: VisibilityDocument, Location: &MetadataLocation{Spreadsheet: true}}
	if err := ok.ValidateForCreate(); err != nil {
		t.Errorf("Expected valid metadata, got %v", err)
	}

	twoLocations := DeveloperMetadata{Key: "k", Visibility: VisibilityDocument,
		Location: &MetadataLocation{Spreadsheet: true, SheetID: a1.Idx(0)}}
	if err := twoLocations.ValidateForCreate(); !errors.Is(err, apierr.ErrSchemaValidation) {
		t.Errorf("Expected SchemaValidationError, got %v", err)
	}

	noKey := DeveloperMetadata{Visibility: VisibilityDocument, Location: &MetadataLocation{Spreadsheet: true}}
	if err := noKey.ValidateForCreate(); !errors.Is(err, apierr.ErrSchemaValidation) {
		t.Errorf("Expected SchemaValidationError, got %v", err)
	}
}

func TestCellMarshalJSON(t *testing.T) {
	row := []Cell{StringCell("a"), NumberCell(2.5), BoolCell(true), FormulaCell("=A1"), EmptyCell()}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `["a",2.5,true,"=A1",""]`
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, b)
	}
}
