// Package schema holds the typed request and response model for the Sheets v4
// values, spreadsheets and developer metadata endpoints, and its conversion to
// and from the wire structs in google.golang.org/api/sheets/v4.
package schema

import (
	"strings"

	"sheets_quota_client/internal/apierr"
)

func checkEnum(typeName, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apierr.New(apierr.KindSchemaValidation, typeName,
		"%q is not one of [%s]", value, strings.Join(allowed, ", "))
}

func required(typeName, field string) error {
	return apierr.New(apierr.KindSchemaValidation, typeName, "%s is required", field)
}

// MajorDimension orders a ValueRange by rows or by columns. Empty means ROWS.
type MajorDimension string

const (
	MajorDimensionRows    MajorDimension = "ROWS"
	MajorDimensionColumns MajorDimension = "COLUMNS"
)

func (d MajorDimension) Validate() error {
	if d == "" {
		return nil
	}
	return checkEnum("MajorDimension", string(d), string(MajorDimensionRows), string(MajorDimensionColumns))
}

// ValueInputOption controls how written values are interpreted.
type ValueInputOption string

const (
	ValueInputRaw         ValueInputOption = "RAW"
	ValueInputUserEntered ValueInputOption = "USER_ENTERED"
)

// Validate rejects the unset value: every write must say how input is parsed.
func (o ValueInputOption) Validate() error {
	if o == "" {
		return required("ValueInputOption", "valueInputOption")
	}
	return checkEnum("ValueInputOption", string(o), string(ValueInputRaw), string(ValueInputUserEntered))
}

// ValueRenderOption controls how read values are rendered.
type ValueRenderOption string

const (
	RenderFormattedValue   ValueRenderOption = "FORMATTED_VALUE"
	RenderUnformattedValue ValueRenderOption = "UNFORMATTED_VALUE"
	RenderFormula          ValueRenderOption = "FORMULA"
)

func (o ValueRenderOption) Validate() error {
	if o == "" {
		return nil
	}
	return checkEnum("ValueRenderOption", string(o),
		string(RenderFormattedValue), string(RenderUnformattedValue), string(RenderFormula))
}

// DateTimeRenderOption controls how dates are rendered when values are unformatted.
type DateTimeRenderOption string

const (
	DateTimeSerialNumber    DateTimeRenderOption = "SERIAL_NUMBER"
	DateTimeFormattedString DateTimeRenderOption = "FORMATTED_STRING"
)

func (o DateTimeRenderOption) Validate() error {
	if o == "" {
		return nil
	}
	return checkEnum("DateTimeRenderOption", string(o), string(DateTimeSerialNumber), string(DateTimeFormattedString))
}

// InsertDataOption controls whether append overwrites or inserts rows.
type InsertDataOption string

const (
	InsertOverwrite InsertDataOption = "OVERWRITE"
	InsertRows      InsertDataOption = "INSERT_ROWS"
)

func (o InsertDataOption) Validate() error {
	if o == "" {
		return nil
	}
	return checkEnum("InsertDataOption", string(o), string(InsertOverwrite), string(InsertRows))
}

// Dimension selects rows or columns in dimension requests. It has no default.
type Dimension string

const (
	DimensionRows    Dimension = "ROWS"
	DimensionColumns Dimension = "COLUMNS"
)

func (d Dimension) Validate() error {
	if d == "" {
		return required("Dimension", "dimension")
	}
	return checkEnum("Dimension", string(d), string(DimensionRows), string(DimensionColumns))
}

type MergeType string

const (
	MergeAll     MergeType = "MERGE_ALL"
	MergeColumns MergeType = "MERGE_COLUMNS"
	MergeRows    MergeType = "MERGE_ROWS"
)

func (m MergeType) Validate() error {
	if m == "" {
		return required("MergeType", "mergeType")
	}
	return checkEnum("MergeType", string(m), string(MergeAll), string(MergeColumns), string(MergeRows))
}

type SortOrder string

const (
	Ascending  SortOrder = "ASCENDING"
	Descending SortOrder = "DESCENDING"
)

func (s SortOrder) Validate() error {
	if s == "" {
		return required("SortOrder", "sortOrder")
	}
	return checkEnum("SortOrder", string(s), string(Ascending), string(Descending))
}

type PasteType string

const (
	PasteNormal                PasteType = "PASTE_NORMAL"
	PasteValues                PasteType = "PASTE_VALUES"
	PasteFormat                PasteType = "PASTE_FORMAT"
	PasteNoBorders             PasteType = "PASTE_NO_BORDERS"
	PasteFormula               PasteType = "PASTE_FORMULA"
	PasteDataValidation        PasteType = "PASTE_DATA_VALIDATION"
	PasteConditionalFormatting PasteType = "PASTE_CONDITIONAL_FORMATTING"
)

func (p PasteType) Validate() error {
	if p == "" {
		return nil
	}
	return checkEnum("PasteType", string(p), string(PasteNormal), string(PasteValues), string(PasteFormat),
		string(PasteNoBorders), string(PasteFormula), string(PasteDataValidation), string(PasteConditionalFormatting))
}

type PasteOrientation string

const (
	PasteOrientationNormal    PasteOrientation = "NORMAL"
	PasteOrientationTranspose PasteOrientation = "TRANSPOSE"
)

func (p PasteOrientation) Validate() error {
	if p == "" {
		return nil
	}
	return checkEnum("PasteOrientation", string(p), string(PasteOrientationNormal), string(PasteOrientationTranspose))
}

// MetadataVisibility limits which apps can see developer metadata.
type MetadataVisibility string

const (
	VisibilityDocument MetadataVisibility = "DOCUMENT"
	VisibilityProject  MetadataVisibility = "PROJECT"
)

func (v MetadataVisibility) Validate() error {
	if v == "" {
		return nil
	}
	return checkEnum("MetadataVisibility", string(v), string(VisibilityDocument), string(VisibilityProject))
}

type MetadataLocationType string

const (
	LocationRow         MetadataLocationType = "ROW"
	LocationColumn      MetadataLocationType = "COLUMN"
	LocationSheet       MetadataLocationType = "SHEET"
	LocationSpreadsheet MetadataLocationType = "SPREADSHEET"
)

func (l MetadataLocationType) Validate() error {
	if l == "" {
		return nil
	}
	return checkEnum("MetadataLocationType", string(l),
		string(LocationRow), string(LocationColumn), string(LocationSheet), string(LocationSpreadsheet))
}

type LocationMatchingStrategy string

const (
	MatchExactLocation        LocationMatchingStrategy = "EXACT_LOCATION"
	MatchIntersectingLocation LocationMatchingStrategy = "INTERSECTING_LOCATION"
)

func (s LocationMatchingStrategy) Validate() error {
	if s == "" {
		return nil
	}
	return checkEnum("LocationMatchingStrategy", string(s), string(MatchExactLocation), string(MatchIntersectingLocation))
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
