package schema

import (
	"strings"

	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/a1"
)

// Request is one structural change for spreadsheets:batchUpdate.
// Only the concrete types in this file can be encoded; EncodeRequests rejects
// any other implementation with an UnsupportedOperation error.
type Request interface {
	// Kind is the request's key in the wire union, e.g. "addSheet".
	Kind() string
	Validate() error
}

// DimensionRange is a half-open span of rows or columns on one sheet.
type DimensionRange struct {
	SheetID   int64
	Dimension Dimension
	Start     *int64
	End       *int64
}

func (d DimensionRange) Validate() error {
	if err := d.Dimension.Validate(); err != nil {
		return err
	}
	if d.SheetID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "DimensionRange", "sheetId %d is negative", d.SheetID)
	}
	if (d.Start != nil && *d.Start < 0) || (d.End != nil && *d.End < 0) {
		return apierr.New(apierr.KindSchemaValidation, "DimensionRange", "indices must not be negative")
	}
	if d.Start != nil && d.End != nil && *d.Start > *d.End {
		return apierr.New(apierr.KindSchemaValidation, "DimensionRange", "startIndex %d > endIndex %d", *d.Start, *d.End)
	}
	return nil
}

func (d DimensionRange) toWire() *sheets.DimensionRange {
	w := &sheets.DimensionRange{SheetId: d.SheetID, Dimension: string(d.Dimension), ForceSendFields: []string{"SheetId"}}
	if d.Start != nil {
		w.StartIndex = *d.Start
		w.ForceSendFields = append(w.ForceSendFields, "StartIndex")
	}
	if d.End != nil {
		w.EndIndex = *d.End
		w.ForceSendFields = append(w.ForceSendFields, "EndIndex")
	}
	return w
}

func dimensionRangeFromWire(w *sheets.DimensionRange) DimensionRange {
	d := DimensionRange{SheetID: w.SheetId, Dimension: Dimension(w.Dimension), Start: a1.Idx(w.StartIndex)}
	if w.EndIndex != 0 {
		d.End = a1.Idx(w.EndIndex)
	}
	return d
}

type AddSheet struct {
	Title       string
	SheetID     *int64 // server assigned when nil
	Index       *int64
	RowCount    int64
	ColumnCount int64
	Hidden      bool
}

func (AddSheet) Kind() string { return "addSheet" }

func (r AddSheet) Validate() error {
	if r.Title == "" {
		return required("AddSheet", "properties.title")
	}
	if (r.SheetID != nil && *r.SheetID < 0) || (r.Index != nil && *r.Index < 0) || r.RowCount < 0 || r.ColumnCount < 0 {
		return apierr.New(apierr.KindSchemaValidation, "AddSheet", "numeric properties must not be negative")
	}
	return nil
}

type DeleteSheet struct {
	SheetID int64
}

func (DeleteSheet) Kind() string { return "deleteSheet" }

func (r DeleteSheet) Validate() error {
	if r.SheetID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "DeleteSheet", "sheetId %d is negative", r.SheetID)
	}
	return nil
}

// UpdateSheetProperties changes only the fields that are set; the field mask is derived from them.
type UpdateSheetProperties struct {
	SheetID           int64
	Title             *string
	Index             *int64
	Hidden            *bool
	RowCount          *int64
	ColumnCount       *int64
	FrozenRowCount    *int64
	FrozenColumnCount *int64
}

func (UpdateSheetProperties) Kind() string { return "updateSheetProperties" }

func (r UpdateSheetProperties) Validate() error {
	if r.SheetID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "UpdateSheetProperties", "sheetId %d is negative", r.SheetID)
	}
	if len(r.fields()) == 0 {
		return apierr.New(apierr.KindSchemaValidation, "UpdateSheetProperties", "no properties to update")
	}
	for _, v := range []*int64{r.Index, r.RowCount, r.ColumnCount, r.FrozenRowCount, r.FrozenColumnCount} {
		if v != nil && *v < 0 {
			return apierr.New(apierr.KindSchemaValidation, "UpdateSheetProperties", "numeric properties must not be negative")
		}
	}
	return nil
}

func (r UpdateSheetProperties) fields() []string {
	var f []string
	if r.Title != nil {
		f = append(f, "title")
	}
	if r.Index != nil {
		f = append(f, "index")
	}
	if r.Hidden != nil {
		f = append(f, "hidden")
	}
	if r.RowCount != nil {
		f = append(f, "gridProperties.rowCount")
	}
	if r.ColumnCount != nil {
		f = append(f, "gridProperties.columnCount")
	}
	if r.FrozenRowCount != nil {
		f = append(f, "gridProperties.frozenRowCount")
	}
	if r.FrozenColumnCount != nil {
		f = append(f, "gridProperties.frozenColumnCount")
	}
	return f
}

type DuplicateSheet struct {
	SourceSheetID int64
	InsertIndex   *int64
	NewSheetID    *int64
	NewSheetName  string
}

func (DuplicateSheet) Kind() string { return "duplicateSheet" }

func (r DuplicateSheet) Validate() error {
	if r.SourceSheetID < 0 || (r.InsertIndex != nil && *r.InsertIndex < 0) || (r.NewSheetID != nil && *r.NewSheetID < 0) {
		return apierr.New(apierr.KindSchemaValidation, "DuplicateSheet", "numeric fields must not be negative")
	}
	return nil
}

type InsertDimension struct {
	Range             DimensionRange
	InheritFromBefore bool
}

func (InsertDimension) Kind() string { return "insertDimension" }

func (r InsertDimension) Validate() error {
	if r.Range.Start == nil || r.Range.End == nil {
		return required("InsertDimension", "range.startIndex and range.endIndex")
	}
	if r.InheritFromBefore && *r.Range.Start == 0 {
		return apierr.New(apierr.KindSchemaValidation, "InsertDimension", "inheritFromBefore needs a preceding row or column")
	}
	return r.Range.Validate()
}

type DeleteDimension struct {
	Range DimensionRange
}

func (DeleteDimension) Kind() string      { return "deleteDimension" }
func (r DeleteDimension) Validate() error { return r.Range.Validate() }

type AppendDimension struct {
	SheetID   int64
	Dimension Dimension
	Length    int64
}

func (AppendDimension) Kind() string { return "appendDimension" }

func (r AppendDimension) Validate() error {
	if r.Length <= 0 {
		return apierr.New(apierr.KindSchemaValidation, "AppendDimension", "length must be positive, got %d", r.Length)
	}
	if r.SheetID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "AppendDimension", "sheetId %d is negative", r.SheetID)
	}
	return r.Dimension.Validate()
}

type AutoResizeDimensions struct {
	Range DimensionRange
}

func (AutoResizeDimensions) Kind() string      { return "autoResizeDimensions" }
func (r AutoResizeDimensions) Validate() error { return r.Range.Validate() }

// UpdateCells writes Rows starting at the top-left of Range. Fields defaults to userEnteredValue.
type UpdateCells struct {
	Range  a1.GridRange
	Rows   [][]Cell
	Fields string
}

func (UpdateCells) Kind() string { return "updateCells" }

func (r UpdateCells) Validate() error {
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		return required("UpdateCells", "rows")
	}
	if n := r.Range.Rows(); n >= 0 && int64(len(r.Rows)) > n {
		return apierr.New(apierr.KindSchemaValidation, "UpdateCells", "%d rows do not fit in a range of %d rows", len(r.Rows), n)
	}
	return nil
}

// RepeatCell writes Value into every cell of Range.
type RepeatCell struct {
	Range  a1.GridRange
	Value  Cell
	Fields string
}

func (RepeatCell) Kind() string      { return "repeatCell" }
func (r RepeatCell) Validate() error { return r.Range.Validate() }

type MergeCells struct {
	Range     a1.GridRange
	MergeType MergeType
}

func (MergeCells) Kind() string { return "mergeCells" }

func (r MergeCells) Validate() error {
	return firstErr(r.Range.Validate(), r.MergeType.Validate())
}

type UnmergeCells struct {
	Range a1.GridRange
}

func (UnmergeCells) Kind() string      { return "unmergeCells" }
func (r UnmergeCells) Validate() error { return r.Range.Validate() }

type SortSpec struct {
	DimensionIndex int64
	Order          SortOrder
}

type SortRange struct {
	Range a1.GridRange
	Specs []SortSpec
}

func (SortRange) Kind() string { return "sortRange" }

func (r SortRange) Validate() error {
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if len(r.Specs) == 0 {
		return required("SortRange", "sortSpecs")
	}
	for _, s := range r.Specs {
		if s.DimensionIndex < 0 {
			return apierr.New(apierr.KindSchemaValidation, "SortRange", "dimensionIndex %d is negative", s.DimensionIndex)
		}
		if err := s.Order.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindReplace needs exactly one scope: Range, SheetID or AllSheets.
type FindReplace struct {
	Find            string
	Replacement     string
	MatchCase       bool
	MatchEntireCell bool
	SearchByRegex   bool
	IncludeFormulas bool
	Range           *a1.GridRange
	SheetID         *int64
	AllSheets       bool
}

func (FindReplace) Kind() string { return "findReplace" }

func (r FindReplace) Validate() error {
	if r.Find == "" {
		return required("FindReplace", "find")
	}
	scopes := 0
	if r.Range != nil {
		scopes++
		if err := r.Range.Validate(); err != nil {
			return err
		}
	}
	if r.SheetID != nil {
		scopes++
	}
	if r.AllSheets {
		scopes++
	}
	if scopes != 1 {
		return apierr.New(apierr.KindSchemaValidation, "FindReplace", "exactly one of range, sheetId, allSheets must be set, got %d", scopes)
	}
	return nil
}

type CopyPaste struct {
	Source      a1.GridRange
	Destination a1.GridRange
	PasteType   PasteType
	Orientation PasteOrientation
}

func (CopyPaste) Kind() string { return "copyPaste" }

func (r CopyPaste) Validate() error {
	return firstErr(r.Source.Validate(), r.Destination.Validate(), r.PasteType.Validate(), r.Orientation.Validate())
}

type CreateDeveloperMetadata struct {
	Metadata DeveloperMetadata
}

func (CreateDeveloperMetadata) Kind() string      { return "createDeveloperMetadata" }
func (r CreateDeveloperMetadata) Validate() error { return r.Metadata.ValidateForCreate() }

// UpdateDeveloperMetadata applies the Fields of Metadata to every entry matched by Filters.
type UpdateDeveloperMetadata struct {
	Filters  []DataFilter
	Metadata DeveloperMetadata
	Fields   string
}

func (UpdateDeveloperMetadata) Kind() string { return "updateDeveloperMetadata" }

func (r UpdateDeveloperMetadata) Validate() error {
	if r.Fields == "" {
		return required("UpdateDeveloperMetadata", "fields")
	}
	if _, err := DataFiltersToWire(r.Filters); err != nil {
		return err
	}
	if r.Metadata.Location != nil {
		if err := r.Metadata.Location.Validate(); err != nil {
			return err
		}
	}
	return r.Metadata.Visibility.Validate()
}

type DeleteDeveloperMetadata struct {
	Filter DataFilter
}

func (DeleteDeveloperMetadata) Kind() string      { return "deleteDeveloperMetadata" }
func (r DeleteDeveloperMetadata) Validate() error { return r.Filter.Validate() }

// EncodeRequests validates and converts structural requests, preserving order.
func EncodeRequests(reqs []Request) ([]*sheets.Request, error) {
	if len(reqs) == 0 {
		return nil, required("BatchUpdateSpreadsheetRequest", "requests")
	}
	out := make([]*sheets.Request, 0, len(reqs))
	for i, r := range reqs {
		if r == nil {
			return nil, apierr.New(apierr.KindSchemaValidation, "EncodeRequests", "request %d is nil", i)
		}
		w, err := encodeRequest(r)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func encodeRequest(r Request) (*sheets.Request, error) {
	// Reject unknown kinds before validation so the error names the real problem.
	switch r.(type) {
	case AddSheet, DeleteSheet, UpdateSheetProperties, DuplicateSheet,
		InsertDimension, DeleteDimension, AppendDimension, AutoResizeDimensions,
		UpdateCells, RepeatCell, MergeCells, UnmergeCells, SortRange, FindReplace, CopyPaste,
		CreateDeveloperMetadata, UpdateDeveloperMetadata, DeleteDeveloperMetadata:
	default:
		return nil, apierr.New(apierr.KindUnsupportedOperation, "EncodeRequests", "request kind %q (%T) is not supported", r.Kind(), r)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	switch v := r.(type) {
	case AddSheet:
		props := &sheets.SheetProperties{Title: v.Title, Hidden: v.Hidden}
		if v.SheetID != nil {
			props.SheetId = *v.SheetID
			props.ForceSendFields = append(props.ForceSendFields, "SheetId")
		}
		if v.Index != nil {
			props.Index = *v.Index
			props.ForceSendFields = append(props.ForceSendFields, "Index")
		}
		if v.RowCount > 0 || v.ColumnCount > 0 {
			props.GridProperties = &sheets.GridProperties{RowCount: v.RowCount, ColumnCount: v.ColumnCount}
		}
		return &sheets.Request{AddSheet: &sheets.AddSheetRequest{Properties: props}}, nil

	case DeleteSheet:
		return &sheets.Request{DeleteSheet: &sheets.DeleteSheetRequest{SheetId: v.SheetID, ForceSendFields: []string{"SheetId"}}}, nil

	case UpdateSheetProperties:
		props := &sheets.SheetProperties{SheetId: v.SheetID, ForceSendFields: []string{"SheetId"}}
		if v.Title != nil {
			props.Title = *v.Title
			props.ForceSendFields = append(props.ForceSendFields, "Title")
		}
		if v.Index != nil {
			props.Index = *v.Index
			props.ForceSendFields = append(props.ForceSendFields, "Index")
		}
		if v.Hidden != nil {
			props.Hidden = *v.Hidden
			props.ForceSendFields = append(props.ForceSendFields, "Hidden")
		}
		if v.RowCount != nil || v.ColumnCount != nil || v.FrozenRowCount != nil || v.FrozenColumnCount != nil {
			gp := &sheets.GridProperties{}
			setForced(&gp.RowCount, v.RowCount, "RowCount", &gp.ForceSendFields)
			setForced(&gp.ColumnCount, v.ColumnCount, "ColumnCount", &gp.ForceSendFields)
			setForced(&gp.FrozenRowCount, v.FrozenRowCount, "FrozenRowCount", &gp.ForceSendFields)
			setForced(&gp.FrozenColumnCount, v.FrozenColumnCount, "FrozenColumnCount", &gp.ForceSendFields)
			props.GridProperties = gp
		}
		return &sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: props,
			Fields:     strings.Join(v.fields(), ","),
		}}, nil

	case DuplicateSheet:
		w := &sheets.DuplicateSheetRequest{
			SourceSheetId:   v.SourceSheetID,
			NewSheetName:    v.NewSheetName,
			ForceSendFields: []string{"SourceSheetId"},
		}
		setForced(&w.InsertSheetIndex, v.InsertIndex, "InsertSheetIndex", &w.ForceSendFields)
		setForced(&w.NewSheetId, v.NewSheetID, "NewSheetId", &w.ForceSendFields)
		return &sheets.Request{DuplicateSheet: w}, nil

	case InsertDimension:
		return &sheets.Request{InsertDimension: &sheets.InsertDimensionRequest{
			Range:             v.Range.toWire(),
			InheritFromBefore: v.InheritFromBefore,
		}}, nil

	case DeleteDimension:
		return &sheets.Request{DeleteDimension: &sheets.DeleteDimensionRequest{Range: v.Range.toWire()}}, nil

	case AppendDimension:
		return &sheets.Request{AppendDimension: &sheets.AppendDimensionRequest{
			SheetId:         v.SheetID,
			Dimension:       string(v.Dimension),
			Length:          v.Length,
			ForceSendFields: []string{"SheetId"},
		}}, nil

	case AutoResizeDimensions:
		return &sheets.Request{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{Dimensions: v.Range.toWire()}}, nil

	case UpdateCells:
		rows := make([]*sheets.RowData, len(v.Rows))
		for i, row := range v.Rows {
			rd := &sheets.RowData{Values: make([]*sheets.CellData, len(row))}
			for j, c := range row {
				rd.Values[j] = &sheets.CellData{UserEnteredValue: c.ExtendedValue()}
			}
			rows[i] = rd
		}
		return &sheets.Request{UpdateCells: &sheets.UpdateCellsRequest{
			Range:  GridRangeToWire(v.Range),
			Rows:   rows,
			Fields: fieldsOrDefault(v.Fields),
		}}, nil

	case RepeatCell:
		return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range:  GridRangeToWire(v.Range),
			Cell:   &sheets.CellData{UserEnteredValue: v.Value.ExtendedValue()},
			Fields: fieldsOrDefault(v.Fields),
		}}, nil

	case MergeCells:
		return &sheets.Request{MergeCells: &sheets.MergeCellsRequest{Range: GridRangeToWire(v.Range), MergeType: string(v.MergeType)}}, nil

	case UnmergeCells:
		return &sheets.Request{UnmergeCells: &sheets.UnmergeCellsRequest{Range: GridRangeToWire(v.Range)}}, nil

	case SortRange:
		specs := make([]*sheets.SortSpec, len(v.Specs))
		for i, s := range v.Specs {
			specs[i] = &sheets.SortSpec{DimensionIndex: s.DimensionIndex, SortOrder: string(s.Order), ForceSendFields: []string{"DimensionIndex"}}
		}
		return &sheets.Request{SortRange: &sheets.SortRangeRequest{Range: GridRangeToWire(v.Range), SortSpecs: specs}}, nil

	case FindReplace:
		w := &sheets.FindReplaceRequest{
			Find:            v.Find,
			Replacement:     v.Replacement,
			MatchCase:       v.MatchCase,
			MatchEntireCell: v.MatchEntireCell,
			SearchByRegex:   v.SearchByRegex,
			IncludeFormulas: v.IncludeFormulas,
			AllSheets:       v.AllSheets,
			ForceSendFields: []string{"Replacement"},
		}
		if v.Range != nil {
			w.Range = GridRangeToWire(*v.Range)
		}
		setForced(&w.SheetId, v.SheetID, "SheetId", &w.ForceSendFields)
		return &sheets.Request{FindReplace: w}, nil

	case CopyPaste:
		return &sheets.Request{CopyPaste: &sheets.CopyPasteRequest{
			Source:           GridRangeToWire(v.Source),
			Destination:      GridRangeToWire(v.Destination),
			PasteType:        string(v.PasteType),
			PasteOrientation: string(v.Orientation),
		}}, nil

	case CreateDeveloperMetadata:
		return &sheets.Request{CreateDeveloperMetadata: &sheets.CreateDeveloperMetadataRequest{DeveloperMetadata: v.Metadata.ToWire()}}, nil

	case UpdateDeveloperMetadata:
		filters, _ := DataFiltersToWire(v.Filters)
		return &sheets.Request{UpdateDeveloperMetadata: &sheets.UpdateDeveloperMetadataRequest{
			DataFilters:       filters,
			DeveloperMetadata: v.Metadata.ToWire(),
			Fields:            v.Fields,
		}}, nil

	case DeleteDeveloperMetadata:
		return &sheets.Request{DeleteDeveloperMetadata: &sheets.DeleteDeveloperMetadataRequest{DataFilter: v.Filter.ToWire()}}, nil
	}
	return nil, apierr.New(apierr.KindUnsupportedOperation, "EncodeRequests", "request kind %q is not supported", r.Kind())
}

func setForced(dst *int64, v *int64, field string, force *[]string) {
	if v == nil {
		return
	}
	*dst = *v
	*force = append(*force, field)
}

func fieldsOrDefault(f string) string {
	if f == "" {
		return "userEnteredValue"
	}
	return f
}

// SheetRefs returns the sheet ids a request reads or modifies, and the ids it
// brings into existence (AddSheet and DuplicateSheet with explicit ids).
func SheetRefs(r Request) (refs []int64, declares []int64) {
	grid := func(gs ...a1.GridRange) {
		for _, g := range gs {
			refs = append(refs, g.SheetID)
		}
	}
	filter := func(fs ...DataFilter) {
		for _, f := range fs {
			if f.GridRange != nil {
				grid(*f.GridRange)
			}
			if f.Lookup != nil && f.Lookup.Location != nil {
				refs = append(refs, locationRefs(*f.Lookup.Location)...)
			}
		}
	}

	switch v := r.(type) {
	case AddSheet:
		if v.SheetID != nil {
			declares = append(declares, *v.SheetID)
		}
	case DeleteSheet:
		refs = append(refs, v.SheetID)
	case UpdateSheetProperties:
		refs = append(refs, v.SheetID)
	case DuplicateSheet:
		refs = append(refs, v.SourceSheetID)
		if v.NewSheetID != nil {
			declares = append(declares, *v.NewSheetID)
		}
	case InsertDimension:
		refs = append(refs, v.Range.SheetID)
	case DeleteDimension:
		refs = append(refs, v.Range.SheetID)
	case AppendDimension:
		refs = append(refs, v.SheetID)
	case AutoResizeDimensions:
		refs = append(refs, v.Range.SheetID)
	case UpdateCells:
		grid(v.Range)
	case RepeatCell:
		grid(v.Range)
	case MergeCells:
		grid(v.Range)
	case UnmergeCells:
		grid(v.Range)
	case SortRange:
		grid(v.Range)
	case FindReplace:
		if v.Range != nil {
			grid(*v.Range)
		}
		if v.SheetID != nil {
			refs = append(refs, *v.SheetID)
		}
	case CopyPaste:
		grid(v.Source, v.Destination)
	case CreateDeveloperMetadata:
		if v.Metadata.Location != nil {
			refs = append(refs, locationRefs(*v.Metadata.Location)...)
		}
	case UpdateDeveloperMetadata:
		filter(v.Filters...)
		if v.Metadata.Location != nil {
			refs = append(refs, locationRefs(*v.Metadata.Location)...)
		}
	case DeleteDeveloperMetadata:
		filter(v.Filter)
	}
	return refs, declares
}

func locationRefs(l MetadataLocation) []int64 {
	switch {
	case l.SheetID != nil:
		return []int64{*l.SheetID}
	case l.DimensionRange != nil:
		return []int64{l.DimensionRange.SheetID}
	}
	return nil
}

// ValidateSheetRefs checks every referenced sheet id against table, allowing
// ids declared earlier in the same request list.
func ValidateSheetRefs(reqs []Request, table *a1.SheetTable) error {
	declared := map[int64]bool{}
	for i, r := range reqs {
		refs, declares := SheetRefs(r)
		for _, id := range refs {
			if !table.HasID(id) && !declared[id] {
				return apierr.New(apierr.KindSchemaValidation, "ValidateSheetRefs",
					"request %d (%s) references unknown sheetId %d", i, r.Kind(), id)
			}
		}
		for _, id := range declares {
			declared[id] = true
		}
	}
	return nil
}

// FindReplaceResult counts what a findReplace request changed.
type FindReplaceResult struct {
	ValuesChanged      int64
	FormulasChanged    int64
	RowsChanged        int64
	SheetsChanged      int64
	OccurrencesChanged int64
}

// Reply is the typed reply for one structural request. Requests without a
// reply body yield a Reply with only Kind empty.
type Reply struct {
	Kind        string
	Sheet       *SheetProperties
	FindReplace *FindReplaceResult
	Metadata    []DeveloperMetadata
}

type BatchUpdateSpreadsheetResponse struct {
	SpreadsheetID string
	Replies       []Reply
}

func BatchUpdateSpreadsheetResponseFromWire(w *sheets.BatchUpdateSpreadsheetResponse) BatchUpdateSpreadsheetResponse {
	if w == nil {
		return BatchUpdateSpreadsheetResponse{}
	}
	out := BatchUpdateSpreadsheetResponse{SpreadsheetID: w.SpreadsheetId, Replies: make([]Reply, len(w.Replies))}
	for i, r := range w.Replies {
		out.Replies[i] = replyFromWire(r)
	}
	return out
}

func replyFromWire(r *sheets.Response) Reply {
	if r == nil {
		return Reply{}
	}
	metadata := func(ms []*sheets.DeveloperMetadata) []DeveloperMetadata {
		out := make([]DeveloperMetadata, 0, len(ms))
		for _, m := range ms {
			out = append(out, DeveloperMetadataFromWire(m))
		}
		return out
	}
	switch {
	case r.AddSheet != nil:
		p := SheetPropertiesFromWire(r.AddSheet.Properties)
		return Reply{Kind: "addSheet", Sheet: &p}
	case r.DuplicateSheet != nil:
		p := SheetPropertiesFromWire(r.DuplicateSheet.Properties)
		return Reply{Kind: "duplicateSheet", Sheet: &p}
	case r.FindReplace != nil:
		f := r.FindReplace
		return Reply{Kind: "findReplace", FindReplace: &FindReplaceResult{
			ValuesChanged:      f.ValuesChanged,
			FormulasChanged:    f.FormulasChanged,
			RowsChanged:        f.RowsChanged,
			SheetsChanged:      f.SheetsChanged,
			OccurrencesChanged: f.OccurrencesChanged,
		}}
	case r.CreateDeveloperMetadata != nil:
		return Reply{Kind: "createDeveloperMetadata", Metadata: []DeveloperMetadata{DeveloperMetadataFromWire(r.CreateDeveloperMetadata.DeveloperMetadata)}}
	case r.UpdateDeveloperMetadata != nil:
		return Reply{Kind: "updateDeveloperMetadata", Metadata: metadata(r.UpdateDeveloperMetadata.DeveloperMetadata)}
	case r.DeleteDeveloperMetadata != nil:
		return Reply{Kind: "deleteDeveloperMetadata", Metadata: metadata(r.DeleteDeveloperMetadata.DeletedDeveloperMetadata)}
	}
	return Reply{}
}
