// Package a1 converts between A1 notation ("Sheet1!A1:B10") and zero-based,
// half-open grid coordinates.
package a1

import (
	"fmt"

	"sheets_quota_client/internal/apierr"
)

// GridRange is a zero-based, half-open rectangle on one sheet.
// A nil bound means "to the edge of the sheet" on that side.
type GridRange struct {
	SheetID  int64
	StartRow *int64
	EndRow   *int64
	StartCol *int64
	EndCol   *int64
}

// Idx returns a pointer to v, for building GridRange literals.
func Idx(v int64) *int64 {
	return &v
}

// Bounded returns a fully bounded GridRange.
func Bounded(sheetID, startRow, endRow, startCol, endCol int64) GridRange {
	return GridRange{
		SheetID:  sheetID,
		StartRow: Idx(startRow),
		EndRow:   Idx(endRow),
		StartCol: Idx(startCol),
		EndCol:   Idx(endCol),
	}
}

// IsOpen reports whether any bound is unset.
func (g GridRange) IsOpen() bool {
	return g.StartRow == nil || g.EndRow == nil || g.StartCol == nil || g.EndCol == nil
}

// Rows returns the number of rows covered, or -1 when the range is open vertically.
func (g GridRange) Rows() int64 {
	if g.EndRow == nil {
		return -1
	}
	return *g.EndRow - deref(g.StartRow)
}

// Cols returns the number of columns covered, or -1 when the range is open horizontally.
func (g GridRange) Cols() int64 {
	if g.EndCol == nil {
		return -1
	}
	return *g.EndCol - deref(g.StartCol)
}

// Validate checks the GridRange invariants: non-negative indices and start <= end.
func (g GridRange) Validate() error {
	if g.SheetID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "GridRange", "sheetId %d is negative", g.SheetID)
	}
	for name, v := range map[string]*int64{
		"startRowIndex":    g.StartRow,
		"endRowIndex":      g.EndRow,
		"startColumnIndex": g.StartCol,
		"endColumnIndex":   g.EndCol,
	} {
		if v != nil && *v < 0 {
			return apierr.New(apierr.KindSchemaValidation, "GridRange", "%s %d is negative", name, *v)
		}
	}
	if g.StartRow != nil && g.EndRow != nil && *g.StartRow > *g.EndRow {
		return apierr.New(apierr.KindSchemaValidation, "GridRange", "startRowIndex %d > endRowIndex %d", *g.StartRow, *g.EndRow)
	}
	if g.StartCol != nil && g.EndCol != nil && *g.StartCol > *g.EndCol {
		return apierr.New(apierr.KindSchemaValidation, "GridRange", "startColumnIndex %d > endColumnIndex %d", *g.StartCol, *g.EndCol)
	}
	return nil
}

// Equal compares two ranges bound by bound.
func (g GridRange) Equal(o GridRange) bool {
	return g.SheetID == o.SheetID &&
		eqPtr(g.StartRow, o.StartRow) && eqPtr(g.EndRow, o.EndRow) &&
		eqPtr(g.StartCol, o.StartCol) && eqPtr(g.EndCol, o.EndCol)
}

func (g GridRange) String() string {
	return fmt.Sprintf("GridRange{sheet=%d rows=[%s,%s) cols=[%s,%s)}",
		g.SheetID, fmtPtr(g.StartRow), fmtPtr(g.EndRow), fmtPtr(g.StartCol), fmtPtr(g.EndCol))
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func eqPtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int64) string {
	if p == nil {
		return "∞"
	}
	return fmt.Sprintf("%d", *p)
}

// SheetTable maps sheet titles to sheet ids for one spreadsheet.
type SheetTable struct {
	byName map[string]int64
	byID   map[int64]string
	order  []string
}

// NewSheetTable builds a table from title/id pairs in sheet order.
func NewSheetTable(titles []string, ids []int64) *SheetTable {
	t := &SheetTable{
		byName: make(map[string]int64, len(titles)),
		byID:   make(map[int64]string, len(titles)),
	}
	for i, title := range titles {
		if i >= len(ids) {
			break
		}
		t.Add(title, ids[i])
	}
	return t
}

// Add registers a sheet.
func (t *SheetTable) Add(title string, id int64) {
	if t.byName == nil {
		t.byName = make(map[string]int64)
		t.byID = make(map[int64]string)
	}
	if _, exists := t.byName[title]; !exists {
		t.order = append(t.order, title)
	}
	t.byName[title] = id
	t.byID[id] = title
}

// ID returns the sheet id for a title.
func (t *SheetTable) ID(title string) (int64, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.byName[title]
	return id, ok
}

// Title returns the title for a sheet id.
func (t *SheetTable) Title(id int64) (string, bool) {
	if t == nil {
		return "", false
	}
	title, ok := t.byID[id]
	return title, ok
}

// HasID reports whether the id belongs to a known sheet.
func (t *SheetTable) HasID(id int64) bool {
	_, ok := t.Title(id)
	return ok
}

// Len returns the number of sheets.
func (t *SheetTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Titles returns sheet titles in spreadsheet order.
func (t *SheetTable) Titles() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
