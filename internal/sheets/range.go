package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range. Rows and columns are 1-based; zero means the
// bound is open (a whole column or a whole row).
type Range struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseRange parses A1 notation such as "Next!A2:N11", "Log!A:B",
// "Subscribers!A2:D" or "Subscriptions!1:1". A bare sheet name covers the
// whole sheet.
func ParseRange(a1 string) (Range, error) {
	sheet, cells, found := strings.Cut(a1, "!")
	if !found {
		return Range{Sheet: unquoteSheet(a1)}, nil
	}

	r := Range{Sheet: unquoteSheet(sheet)}
	if r.Sheet == "" {
		return Range{}, fmt.Errorf("parsing range %q: missing sheet name", a1)
	}

	start, end, isSpan := strings.Cut(cells, ":")
	var err error
	if r.StartCol, r.StartRow, err = parseCell(start); err != nil {
		return Range{}, fmt.Errorf("parsing range %q: %w", a1, err)
	}
	if !isSpan {
		r.EndCol, r.EndRow = r.StartCol, r.StartRow
		return r, nil
	}
	if r.EndCol, r.EndRow, err = parseCell(end); err != nil {
		return Range{}, fmt.Errorf("parsing range %q: %w", a1, err)
	}

	if (r.StartCol == 0) != (r.EndCol == 0) {
		return Range{}, fmt.Errorf("parsing range %q: mixed row and column bounds", a1)
	}
	// "A:B5" starts at the first row
	if r.StartRow == 0 && r.EndRow != 0 {
		r.StartRow = 1
	}
	return r, nil
}

// String formats the range back into A1 notation
func (r Range) String() string {
	if r.StartCol == 0 && r.StartRow == 0 && r.EndCol == 0 && r.EndRow == 0 {
		return r.Sheet
	}
	return r.Sheet + "!" + formatCell(r.StartCol, r.StartRow) + ":" + formatCell(r.EndCol, r.EndRow)
}

// ColumnName converts a 1-based column index to letters (1 is A, 27 is AA)
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

func parseCell(s string) (col, row int, err error) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		col = col*26 + int(upper(s[i])-'A'+1)
		i++
	}
	if i < len(s) {
		row, err = strconv.Atoi(s[i:])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid cell reference %q", s)
		}
	}
	if col == 0 && row == 0 {
		return 0, 0, fmt.Errorf("empty cell reference")
	}
	return col, row, nil
}

func formatCell(col, row int) string {
	s := ColumnName(col)
	if row > 0 {
		s += strconv.Itoa(row)
	}
	return s
}

func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func isLetter(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
