package schema

import (
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/domain/a1"
)

// GridRangeToWire converts a GridRange. Zero indices that are set are force-sent
// so that 0 is not confused with an open bound.
func GridRangeToWire(g a1.GridRange) *sheets.GridRange {
	w := &sheets.GridRange{SheetId: g.SheetID, ForceSendFields: []string{"SheetId"}}
	if g.StartRow != nil {
		w.StartRowIndex = *g.StartRow
		w.ForceSendFields = append(w.ForceSendFields, "StartRowIndex")
	}
	if g.EndRow != nil {
		w.EndRowIndex = *g.EndRow
		w.ForceSendFields = append(w.ForceSendFields, "EndRowIndex")
	}
	if g.StartCol != nil {
		w.StartColumnIndex = *g.StartCol
		w.ForceSendFields = append(w.ForceSendFields, "StartColumnIndex")
	}
	if g.EndCol != nil {
		w.EndColumnIndex = *g.EndCol
		w.ForceSendFields = append(w.ForceSendFields, "EndColumnIndex")
	}
	return w
}

// GridRangeFromWire converts a decoded GridRange. The server omits zero
// fields, so a missing start reads as 0 and a missing end as open.
func GridRangeFromWire(w *sheets.GridRange) a1.GridRange {
	if w == nil {
		return a1.GridRange{}
	}
	g := a1.GridRange{
		SheetID:  w.SheetId,
		StartRow: a1.Idx(w.StartRowIndex),
		StartCol: a1.Idx(w.StartColumnIndex),
	}
	if w.EndRowIndex != 0 {
		g.EndRow = a1.Idx(w.EndRowIndex)
	}
	if w.EndColumnIndex != 0 {
		g.EndCol = a1.Idx(w.EndColumnIndex)
	}
	return g
}

// SheetProperties describes one tab.
type SheetProperties struct {
	SheetID     int64
	Title       string
	Index       int64
	RowCount    int64
	ColumnCount int64
	Hidden      bool
}

func SheetPropertiesFromWire(w *sheets.SheetProperties) SheetProperties {
	if w == nil {
		return SheetProperties{}
	}
	p := SheetProperties{
		SheetID: w.SheetId,
		Title:   w.Title,
		Index:   w.Index,
		Hidden:  w.Hidden,
	}
	if w.GridProperties != nil {
		p.RowCount = w.GridProperties.RowCount
		p.ColumnCount = w.GridProperties.ColumnCount
	}
	return p
}

// Spreadsheet is the subset of spreadsheets.get the client relies on.
type Spreadsheet struct {
	SpreadsheetID string
	Title         string
	Sheets        []SheetProperties
}

func SpreadsheetFromWire(w *sheets.Spreadsheet) Spreadsheet {
	if w == nil {
		return Spreadsheet{}
	}
	s := Spreadsheet{SpreadsheetID: w.SpreadsheetId}
	if w.Properties != nil {
		s.Title = w.Properties.Title
	}
	for _, sh := range w.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		s.Sheets = append(s.Sheets, SheetPropertiesFromWire(sh.Properties))
	}
	return s
}

// Sheet finds a tab by title.
func (s Spreadsheet) Sheet(title string) (SheetProperties, bool) {
	for _, p := range s.Sheets {
		if p.Title == title {
			return p, true
		}
	}
	return SheetProperties{}, false
}

// Table returns the title/id table used to resolve A1 ranges.
func (s Spreadsheet) Table() *a1.SheetTable {
	t := a1.NewSheetTable(nil, nil)
	for _, p := range s.Sheets {
		t.Add(p.Title, p.SheetID)
	}
	return t
}
