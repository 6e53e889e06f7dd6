package a1

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertySheetNames = []interface{}{"Sheet1", "My Sheet", "Bob's Data", "Q1", "2024 Budget", "TRUE", "data_raw", "R1C1"}

// TestCodecProperties checks the round-trip guarantees of the codec
func TestCodecProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: parse(format(g, name)) reproduces a bounded, non-empty GridRange exactly
	properties.Property("format then parse reproduces bounded grid", prop.ForAll(
		func(sheetID, startRow, height, startCol, width int64, name string) bool {
			g := Bounded(sheetID, startRow, startRow+height, startCol, startCol+width)

			text, err := Format(g, name)
			if err != nil {
				return false
			}
			r, err := Parse(text)
			if err != nil {
				return false
			}
			if r.SheetName != name {
				return false
			}
			resolved, err := Resolve(r, NewSheetTable([]string{name}, []int64{sheetID}))
			if err != nil {
				return false
			}
			return resolved.Equal(g)
		},
		gen.Int64Range(0, 2_000_000_000),
		gen.Int64Range(0, 100_000),
		gen.Int64Range(1, 1_000),
		gen.Int64Range(0, MaxColumns-100),
		gen.Int64Range(1, 99),
		gen.OneConstOf(propertySheetNames...),
	))

	// Property: formatting a parsed range is a fixed point (canonical form is stable)
	properties.Property("format of parse is stable", prop.ForAll(
		func(startRow, height, startCol, width int64, name string) bool {
			text, err := Format(Bounded(0, startRow, startRow+height, startCol, startCol+width), name)
			if err != nil {
				return false
			}
			again, err := Normalize(text)
			if err != nil {
				return false
			}
			return again == text
		},
		gen.Int64Range(0, 5_000),
		gen.Int64Range(1, 50),
		gen.Int64Range(0, 800),
		gen.Int64Range(1, 30),
		gen.OneConstOf(propertySheetNames...),
	))

	// Property: column letters and indices are inverse functions
	properties.Property("column conversion round trip", prop.ForAll(
		func(idx int64) bool {
			back, err := ColumnToIndex(IndexToColumn(idx))
			return err == nil && back == idx
		},
		gen.Int64Range(0, MaxColumns-1),
	))

	// Property: swapping the endpoints of a multi-cell range is always rejected
	properties.Property("inverted ranges never parse", prop.ForAll(
		func(startRow, height, startCol, width int64) bool {
			lo := IndexToColumn(startCol)
			hi := IndexToColumn(startCol + width)
			text := "Sheet1!" + hi + formatRow(startRow+height) + ":" + lo + formatRow(startRow)
			_, err := Parse(text)
			return err != nil
		},
		gen.Int64Range(1, 5_000),
		gen.Int64Range(1, 50),
		gen.Int64Range(0, 800),
		gen.Int64Range(1, 30),
	))

	properties.TestingRun(t)
}

func formatRow(zeroBased int64) string {
	return formatEndpoint(endpoint{row: Idx(zeroBased)})
}
