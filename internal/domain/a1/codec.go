package a1

import (
	"regexp"
	"strconv"
	"strings"

	"sheets_quota_client/internal/apierr"
)

const (
	// MaxColumns is the Sheets column ceiling (ZZZ).
	MaxColumns = 18278
	// MaxRows is the Sheets cell ceiling, used as an upper bound for row numbers.
	MaxRows = 10_000_000
)

var (
	plainName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	cellLike   = regexp.MustCompile(`^(?i)[A-Z]{1,3}[0-9]+$`)
	r1c1Like   = regexp.MustCompile(`^(?i)R[0-9]*C[0-9]*$`)
	boolTokens = map[string]bool{"TRUE": true, "FALSE": true}
)

// Range is a parsed A1 reference: an optional sheet name plus the grid
// rectangle it names. Grid.SheetID is left zero until Resolve.
type Range struct {
	SheetName string
	Grid      GridRange
}

// WholeSheet reports whether the reference covers an entire sheet.
func (r Range) WholeSheet() bool {
	return r.Grid.StartRow == nil && r.Grid.EndRow == nil && r.Grid.StartCol == nil && r.Grid.EndCol == nil
}

// String renders the range in canonical A1 form, or "" if it cannot be rendered.
func (r Range) String() string {
	s, err := Format(r.Grid, r.SheetName)
	if err != nil {
		return ""
	}
	return s
}

func syntaxErr(format string, args ...interface{}) error {
	return apierr.New(apierr.KindRangeSyntax, "a1.Parse", format, args...)
}

// Parse reads an A1 reference of the form [SheetName!]ColRow[:ColRow].
// Partial references (A:A, 1:1, A1:B) leave the missing bounds nil.
// A bare sheet name selects the whole sheet.
func Parse(text string) (Range, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Range{}, syntaxErr("empty range")
	}

	if text[0] == '\'' {
		name, rest, err := readQuotedName(text)
		if err != nil {
			return Range{}, err
		}
		if rest == "" {
			return Range{SheetName: name}, nil
		}
		if rest[0] != '!' {
			return Range{}, syntaxErr("expected '!' after sheet name in %q", text)
		}
		return parseWithSheet(name, rest[1:], text)
	}

	if idx := strings.IndexByte(text, '!'); idx >= 0 {
		name := text[:idx]
		if name == "" {
			return Range{}, syntaxErr("empty sheet name in %q", text)
		}
		if strings.ContainsAny(name, "' \t") {
			return Range{}, syntaxErr("sheet name %q must be quoted", name)
		}
		return parseWithSheet(name, text[idx+1:], text)
	}

	grid, err := parseRef(text)
	if err == nil {
		return Range{Grid: grid}, nil
	}
	// A lone identifier that is not a cell reference names a sheet, as in "Sheet1".
	if !cellLike.MatchString(text) && !strings.ContainsAny(text, ":$ \t") {
		return Range{SheetName: text}, nil
	}
	return Range{}, err
}

func parseWithSheet(name, ref, original string) (Range, error) {
	if ref == "" {
		return Range{}, syntaxErr("missing cell reference after '!' in %q", original)
	}
	grid, err := parseRef(ref)
	if err != nil {
		return Range{}, err
	}
	return Range{SheetName: name, Grid: grid}, nil
}

// readQuotedName reads 'name' with doubled quotes as escapes and returns the remainder.
func readQuotedName(text string) (string, string, error) {
	var b strings.Builder
	i := 1
	for i < len(text) {
		c := text[i]
		if c == '\'' {
			if i+1 < len(text) && text[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			if b.Len() == 0 {
				return "", "", syntaxErr("empty quoted sheet name in %q", text)
			}
			return b.String(), text[i+1:], nil
		}
		b.WriteByte(c)
		i++
	}
	return "", "", syntaxErr("unterminated quoted sheet name in %q", text)
}

type endpoint struct {
	col *int64 // zero-based
	row *int64 // zero-based
}

func (e endpoint) colOnly() bool { return e.col != nil && e.row == nil }
func (e endpoint) rowOnly() bool { return e.col == nil && e.row != nil }

func parseRef(ref string) (GridRange, error) {
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return GridRange{}, syntaxErr("too many ':' in %q", ref)
	}

	start, err := parseEndpoint(parts[0])
	if err != nil {
		return GridRange{}, err
	}

	if len(parts) == 1 {
		if start.col == nil || start.row == nil {
			return GridRange{}, syntaxErr("single reference %q must name a cell", ref)
		}
		return GridRange{
			StartRow: start.row,
			EndRow:   Idx(*start.row + 1),
			StartCol: start.col,
			EndCol:   Idx(*start.col + 1),
		}, nil
	}

	end, err := parseEndpoint(parts[1])
	if err != nil {
		return GridRange{}, err
	}
	if (start.colOnly() && end.rowOnly()) || (start.rowOnly() && end.colOnly()) {
		return GridRange{}, syntaxErr("cannot mix column-only and row-only endpoints in %q", ref)
	}
	if start.col != nil && end.col != nil && *start.col > *end.col {
		return GridRange{}, syntaxErr("inverted columns in %q", ref)
	}
	if start.row != nil && end.row != nil && *start.row > *end.row {
		return GridRange{}, syntaxErr("inverted rows in %q", ref)
	}

	g := GridRange{StartRow: start.row, StartCol: start.col}
	if end.row != nil {
		g.EndRow = Idx(*end.row + 1)
	}
	if end.col != nil {
		g.EndCol = Idx(*end.col + 1)
	}
	return g, nil
}

func parseEndpoint(s string) (endpoint, error) {
	if s == "" {
		return endpoint{}, syntaxErr("empty range endpoint")
	}
	i := 0
	if s[i] == '$' {
		i++
	}
	letterStart := i
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	letters := s[letterStart:i]
	if i < len(s) && s[i] == '$' {
		if letters == "" {
			return endpoint{}, syntaxErr("misplaced '$' in %q", s)
		}
		i++
	}
	digits := s[i:]

	var ep endpoint
	if letters != "" {
		col, err := ColumnToIndex(letters)
		if err != nil {
			return endpoint{}, err
		}
		ep.col = Idx(col)
	}
	if digits != "" {
		if digits[0] == '0' {
			return endpoint{}, syntaxErr("malformed row number %q", digits)
		}
		for j := 0; j < len(digits); j++ {
			if digits[j] < '0' || digits[j] > '9' {
				return endpoint{}, syntaxErr("malformed reference %q", s)
			}
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n > MaxRows {
			return endpoint{}, syntaxErr("row number %q out of range", digits)
		}
		ep.row = Idx(n - 1)
	}
	if ep.col == nil && ep.row == nil {
		return endpoint{}, syntaxErr("malformed reference %q", s)
	}
	return ep, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// ColumnToIndex converts column letters (A, Z, AA, ...) to a zero-based index.
func ColumnToIndex(letters string) (int64, error) {
	if letters == "" || len(letters) > 3 {
		return 0, syntaxErr("malformed column letters %q", letters)
	}
	var n int64
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int64(c-'A'+1)
		case c >= 'a' && c <= 'z':
			n = n*26 + int64(c-'a'+1)
		default:
			return 0, syntaxErr("malformed column letters %q", letters)
		}
	}
	return n - 1, nil
}

// IndexToColumn converts a zero-based column index to letters.
func IndexToColumn(index int64) string {
	if index < 0 {
		return ""
	}
	n := index + 1
	var buf [8]byte
	pos := len(buf)
	for n > 0 {
		n--
		pos--
		buf[pos] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[pos:])
}

// QuoteSheetName returns name as it must appear before '!'.
func QuoteSheetName(name string) string {
	if plainName.MatchString(name) && !cellLike.MatchString(name) && !r1c1Like.MatchString(name) && !boolTokens[strings.ToUpper(name)] {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func formatErr(format string, args ...interface{}) error {
	return apierr.New(apierr.KindRangeSyntax, "a1.Format", format, args...)
}

// Format renders g in A1 notation. sheetName may be empty for a sheet-less reference.
// Ranges whose open bounds have no A1 spelling are rejected.
func Format(g GridRange, sheetName string) (string, error) {
	if err := g.Validate(); err != nil {
		return "", formatErr("%v", err)
	}

	prefix := ""
	if sheetName != "" {
		prefix = QuoteSheetName(sheetName) + "!"
	}

	if g.StartRow == nil && g.EndRow == nil && g.StartCol == nil && g.EndCol == nil {
		if sheetName == "" {
			return "", formatErr("whole-sheet range needs a sheet name")
		}
		return QuoteSheetName(sheetName), nil
	}

	if (g.EndRow != nil && *g.EndRow == deref(g.StartRow)) || (g.EndCol != nil && *g.EndCol == deref(g.StartCol)) {
		return "", formatErr("empty range %v has no A1 form", g)
	}

	if !g.IsOpen() && *g.EndRow == *g.StartRow+1 && *g.EndCol == *g.StartCol+1 {
		return prefix + IndexToColumn(*g.StartCol) + strconv.FormatInt(*g.StartRow+1, 10), nil
	}

	// An unset start side is the sheet origin; spell it wherever the end names that side.
	startCol, startRow := g.StartCol, g.StartRow
	if startCol == nil && g.EndCol != nil {
		startCol = Idx(0)
	}
	if startRow == nil && g.EndRow != nil && (g.EndCol != nil || g.StartCol == nil) {
		startRow = Idx(0)
	}
	if g.EndCol == nil && g.EndRow == nil {
		return "", formatErr("range %v is open on both end bounds", g)
	}

	start := endpoint{col: startCol, row: startRow}
	end := endpoint{}
	if g.EndCol != nil {
		end.col = Idx(*g.EndCol - 1)
	}
	if g.EndRow != nil {
		end.row = Idx(*g.EndRow - 1)
	}
	if (start.colOnly() && end.rowOnly()) || (start.rowOnly() && end.colOnly()) {
		return "", formatErr("range %v mixes column-only and row-only bounds", g)
	}

	return prefix + formatEndpoint(start) + ":" + formatEndpoint(end), nil
}

func formatEndpoint(e endpoint) string {
	s := ""
	if e.col != nil {
		s += IndexToColumn(*e.col)
	}
	if e.row != nil {
		s += strconv.FormatInt(*e.row+1, 10)
	}
	return s
}

// Resolve binds a parsed range to a sheet id. A reference without a sheet
// name is only accepted when the spreadsheet has exactly one sheet.
func Resolve(r Range, table *SheetTable) (GridRange, error) {
	g := r.Grid
	if r.SheetName == "" {
		if table.Len() != 1 {
			return GridRange{}, apierr.New(apierr.KindRangeSyntax, "a1.Resolve",
				"range has no sheet name and the spreadsheet has %d sheets", table.Len())
		}
		id, _ := table.ID(table.Titles()[0])
		g.SheetID = id
		return g, nil
	}
	id, ok := table.ID(r.SheetName)
	if !ok {
		return GridRange{}, apierr.New(apierr.KindRangeSyntax, "a1.Resolve", "unknown sheet %q", r.SheetName)
	}
	g.SheetID = id
	return g, nil
}

// Normalize parses text and renders it back in canonical form.
func Normalize(text string) (string, error) {
	r, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Format(r.Grid, r.SheetName)
}
