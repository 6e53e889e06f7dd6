package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
)

// CellKind tags which variant of the Cell union is populated.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
	CellFormula
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellFormula:
		return "formula"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value: empty, string, number, bool or formula.
// The zero Cell is empty.
//
// The Sheets API exchanges values as [][]interface{}; Cell keeps interface{}
// at the wire boundary and gives the rest of the code typed access.
type Cell struct {
	kind CellKind
	str  string // string or formula text
	num  float64
	b    bool
}

// CellValue is the constructor input for NewCell. At most one field may be set,
// mirroring ExtendedValue.
type CellValue struct {
	String  *string
	Number  *float64
	Bool    *bool
	Formula *string
}

// NewCell builds a Cell from exactly one populated variant. No variant gives an empty cell.
func NewCell(v CellValue) (Cell, error) {
	set := 0
	var c Cell
	if v.String != nil {
		set++
		c = StringCell(*v.String)
	}
	if v.Number != nil {
		set++
		c = NumberCell(*v.Number)
	}
	if v.Bool != nil {
		set++
		c = BoolCell(*v.Bool)
	}
	if v.Formula != nil {
		set++
		if !strings.HasPrefix(*v.Formula, "=") {
			return Cell{}, apierr.New(apierr.KindInvalidCellValue, "schema.NewCell", "formula %q must start with '='", *v.Formula)
		}
		c = FormulaCell(*v.Formula)
	}
	if set > 1 {
		return Cell{}, apierr.New(apierr.KindInvalidCellValue, "schema.NewCell", "%d variants set, expected at most one", set)
	}
	return c, nil
}

func EmptyCell() Cell           { return Cell{} }
func StringCell(s string) Cell  { return Cell{kind: CellString, str: s} }
func NumberCell(n float64) Cell { return Cell{kind: CellNumber, num: n} }
func BoolCell(b bool) Cell      { return Cell{kind: CellBool, b: b} }
func FormulaCell(f string) Cell { return Cell{kind: CellFormula, str: f} }

// CellFromRaw wraps a value decoded from the API.
func CellFromRaw(raw interface{}) Cell {
	switch v := raw.(type) {
	case nil:
		return Cell{}
	case string:
		if v == "" {
			return Cell{}
		}
		return StringCell(v)
	case float64:
		return NumberCell(v)
	case float32:
		return NumberCell(float64(v))
	case int:
		return NumberCell(float64(v))
	case int64:
		return NumberCell(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return NumberCell(f)
		}
		return StringCell(v.String())
	case bool:
		return BoolCell(v)
	default:
		return StringCell(fmt.Sprintf("%v", v))
	}
}

func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty returns true for the empty variant.
func (c Cell) IsEmpty() bool {
	return c.kind == CellEmpty
}

// String returns the cell rendered as text.
func (c Cell) String() string {
	switch c.kind {
	case CellString, CellFormula:
		return c.str
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellBool:
		if c.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Float returns the numeric value, parsing strings when possible.
func (c Cell) Float() float64 {
	switch c.kind {
	case CellNumber:
		return c.num
	case CellString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.str), 64); err == nil {
			return f
		}
	case CellBool:
		if c.b {
			return 1
		}
	}
	return 0
}

// Int returns the cell value as an int
func (c Cell) Int() int {
	return int(c.Int64())
}

// Int64 returns the cell value as an int64
func (c Cell) Int64() int64 {
	if c.kind == CellString {
		if i, err := strconv.ParseInt(strings.TrimSpace(c.str), 10, 64); err == nil {
			return i
		}
	}
	return int64(c.Float())
}

// Int64Ptr returns the cell value as *int64, or nil if empty
func (c Cell) Int64Ptr() *int64 {
	if c.IsEmpty() {
		return nil
	}
	i := c.Int64()
	return &i
}

// Bool returns the boolean value; strings "TRUE"/"FALSE" are accepted case-insensitively.
func (c Cell) Bool() bool {
	switch c.kind {
	case CellBool:
		return c.b
	case CellString:
		b, _ := strconv.ParseBool(strings.ToLower(c.str))
		return b
	case CellNumber:
		return c.num != 0
	}
	return false
}

// Formula returns the formula text when the cell holds one.
func (c Cell) Formula() (string, bool) {
	if c.kind != CellFormula {
		return "", false
	}
	return c.str, true
}

// Raw returns the value for a ValueRange payload. Empty cells become "" which
// the API stores as a blank cell.
func (c Cell) Raw() interface{} {
	switch c.kind {
	case CellString, CellFormula:
		return c.str
	case CellNumber:
		return c.num
	case CellBool:
		return c.b
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as its Raw value.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Raw())
}

// ExtendedValue returns the cell as a CellData userEnteredValue, with exactly
// one variant populated. Empty cells return nil, which clears the cell.
func (c Cell) ExtendedValue() *sheets.ExtendedValue {
	switch c.kind {
	case CellString:
		s := c.str
		return &sheets.ExtendedValue{StringValue: &s}
	case CellNumber:
		n := c.num
		return &sheets.ExtendedValue{NumberValue: &n}
	case CellBool:
		b := c.b
		return &sheets.ExtendedValue{BoolValue: &b}
	case CellFormula:
		f := c.str
		return &sheets.ExtendedValue{FormulaValue: &f}
	default:
		return nil
	}
}

// StringRows converts plain text rows to cells. Empty strings become empty cells.
func StringRows(rows [][]string) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, row := range rows {
		out[i] = make([]Cell, len(row))
		for j, v := range row {
			out[i][j] = CellFromRaw(v)
		}
	}
	return out
}
