package schema

import (
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/a1"
)

// DeveloperMetadata is a key/value pair attached to a spreadsheet location.
type DeveloperMetadata struct {
	ID         int64 // assigned by the server when zero on create
	Key        string
	Value      string
	Visibility MetadataVisibility
	Location   *MetadataLocation
}

// MetadataLocation pins metadata to exactly one of: the spreadsheet, a sheet, or a dimension range.
type MetadataLocation struct {
	Spreadsheet    bool
	SheetID        *int64
	DimensionRange *DimensionRange
	// Type is filled on decode; it is derived from the populated field on encode.
	Type MetadataLocationType
}

func (l MetadataLocation) Validate() error {
	set := 0
	if l.Spreadsheet {
		set++
	}
	if l.SheetID != nil {
		set++
		if *l.SheetID < 0 {
			return apierr.New(apierr.KindSchemaValidation, "MetadataLocation", "sheetId %d is negative", *l.SheetID)
		}
	}
	if l.DimensionRange != nil {
		set++
		if err := l.DimensionRange.Validate(); err != nil {
			return err
		}
	}
	if set != 1 {
		return apierr.New(apierr.KindSchemaValidation, "MetadataLocation",
			"exactly one of spreadsheet, sheetId, dimensionRange must be set, got %d", set)
	}
	return l.Type.Validate()
}

func (l MetadataLocation) toWire() *sheets.DeveloperMetadataLocation {
	w := &sheets.DeveloperMetadataLocation{}
	switch {
	case l.Spreadsheet:
		w.Spreadsheet = true
	case l.SheetID != nil:
		w.SheetId = *l.SheetID
		w.ForceSendFields = []string{"SheetId"}
	case l.DimensionRange != nil:
		w.DimensionRange = l.DimensionRange.toWire()
	}
	return w
}

func metadataLocationFromWire(w *sheets.DeveloperMetadataLocation) *MetadataLocation {
	if w == nil {
		return nil
	}
	l := &MetadataLocation{Type: MetadataLocationType(w.LocationType)}
	switch {
	case w.Spreadsheet:
		l.Spreadsheet = true
	case w.DimensionRange != nil:
		dr := dimensionRangeFromWire(w.DimensionRange)
		l.DimensionRange = &dr
	default:
		l.SheetID = a1.Idx(w.SheetId)
	}
	return l
}

// ValidateForCreate checks the fields required by createDeveloperMetadata.
func (m DeveloperMetadata) ValidateForCreate() error {
	if m.Key == "" {
		return required("DeveloperMetadata", "metadataKey")
	}
	if m.Visibility == "" {
		return required("DeveloperMetadata", "visibility")
	}
	if m.Location == nil {
		return required("DeveloperMetadata", "location")
	}
	return firstErr(m.Visibility.Validate(), m.Location.Validate())
}

func (m DeveloperMetadata) ToWire() *sheets.DeveloperMetadata {
	w := &sheets.DeveloperMetadata{
		MetadataId:    m.ID,
		MetadataKey:   m.Key,
		MetadataValue: m.Value,
		Visibility:    string(m.Visibility),
	}
	if m.Location != nil {
		w.Location = m.Location.toWire()
	}
	return w
}

func DeveloperMetadataFromWire(w *sheets.DeveloperMetadata) DeveloperMetadata {
	if w == nil {
		return DeveloperMetadata{}
	}
	return DeveloperMetadata{
		ID:         w.MetadataId,
		Key:        w.MetadataKey,
		Value:      w.MetadataValue,
		Visibility: MetadataVisibility(w.Visibility),
		Location:   metadataLocationFromWire(w.Location),
	}
}

// MetadataLookup selects developer metadata by any combination of its fields.
type MetadataLookup struct {
	ID                       *int64
	Key                      string
	Value                    string
	Visibility               MetadataVisibility
	LocationType             MetadataLocationType
	LocationMatchingStrategy LocationMatchingStrategy
	Location                 *MetadataLocation
}

func (l MetadataLookup) Validate() error {
	if l.ID == nil && l.Key == "" && l.Value == "" && l.Visibility == "" && l.LocationType == "" && l.Location == nil {
		return apierr.New(apierr.KindSchemaValidation, "MetadataLookup", "at least one lookup criterion is required")
	}
	if l.ID != nil && *l.ID < 0 {
		return apierr.New(apierr.KindSchemaValidation, "MetadataLookup", "metadataId %d is negative", *l.ID)
	}
	if l.Location != nil {
		if err := l.Location.Validate(); err != nil {
			return err
		}
	}
	return firstErr(l.Visibility.Validate(), l.LocationType.Validate(), l.LocationMatchingStrategy.Validate())
}

func (l MetadataLookup) toWire() *sheets.DeveloperMetadataLookup {
	w := &sheets.DeveloperMetadataLookup{
		MetadataKey:              l.Key,
		MetadataValue:            l.Value,
		Visibility:               string(l.Visibility),
		LocationType:             string(l.LocationType),
		LocationMatchingStrategy: string(l.LocationMatchingStrategy),
	}
	if l.ID != nil {
		w.MetadataId = *l.ID
		w.ForceSendFields = []string{"MetadataId"}
	}
	if l.Location != nil {
		w.MetadataLocation = l.Location.toWire()
	}
	return w
}

// DataFilter selects data by exactly one of an A1 range, a grid range or a metadata lookup.
type DataFilter struct {
	A1Range   string
	GridRange *a1.GridRange
	Lookup    *MetadataLookup
}

func (f DataFilter) Validate() error {
	set := 0
	if f.A1Range != "" {
		set++
		if _, err := a1.Parse(f.A1Range); err != nil {
			return err
		}
	}
	if f.GridRange != nil {
		set++
		if err := f.GridRange.Validate(); err != nil {
			return err
		}
	}
	if f.Lookup != nil {
		set++
		if err := f.Lookup.Validate(); err != nil {
			return err
		}
	}
	if set != 1 {
		return apierr.New(apierr.KindSchemaValidation, "DataFilter",
			"exactly one of a1Range, gridRange, developerMetadataLookup must be set, got %d", set)
	}
	return nil
}

func (f DataFilter) ToWire() *sheets.DataFilter {
	w := &sheets.DataFilter{A1Range: f.A1Range}
	if f.GridRange != nil {
		w.GridRange = GridRangeToWire(*f.GridRange)
	}
	if f.Lookup != nil {
		w.DeveloperMetadataLookup = f.Lookup.toWire()
	}
	return w
}

func dataFilterFromWire(w *sheets.DataFilter) DataFilter {
	if w == nil {
		return DataFilter{}
	}
	f := DataFilter{A1Range: w.A1Range}
	if w.GridRange != nil {
		g := GridRangeFromWire(w.GridRange)
		f.GridRange = &g
	}
	if l := w.DeveloperMetadataLookup; l != nil {
		lookup := &MetadataLookup{
			Key:                      l.MetadataKey,
			Value:                    l.MetadataValue,
			Visibility:               MetadataVisibility(l.Visibility),
			LocationType:             MetadataLocationType(l.LocationType),
			LocationMatchingStrategy: LocationMatchingStrategy(l.LocationMatchingStrategy),
			Location:                 metadataLocationFromWire(l.MetadataLocation),
		}
		if l.MetadataId != 0 {
			lookup.ID = a1.Idx(l.MetadataId)
		}
		f.Lookup = lookup
	}
	return f
}

// DataFiltersToWire validates and converts a filter list.
func DataFiltersToWire(filters []DataFilter) ([]*sheets.DataFilter, error) {
	if len(filters) == 0 {
		return nil, required("DataFilter", "dataFilters")
	}
	out := make([]*sheets.DataFilter, len(filters))
	for i, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		out[i] = f.ToWire()
	}
	return out, nil
}

// MatchedDeveloperMetadata pairs a match with the filters that selected it.
type MatchedDeveloperMetadata struct {
	Metadata    DeveloperMetadata
	DataFilters []DataFilter
}

func MatchedDeveloperMetadataFromWire(w *sheets.SearchDeveloperMetadataResponse) []MatchedDeveloperMetadata {
	if w == nil {
		return nil
	}
	out := make([]MatchedDeveloperMetadata, 0, len(w.MatchedDeveloperMetadata))
	for _, m := range w.MatchedDeveloperMetadata {
		if m == nil {
			continue
		}
		match := MatchedDeveloperMetadata{Metadata: DeveloperMetadataFromWire(m.DeveloperMetadata)}
		for _, f := range m.DataFilters {
			match.DataFilters = append(match.DataFilters, dataFilterFromWire(f))
		}
		out = append(out, match)
	}
	return out
}
