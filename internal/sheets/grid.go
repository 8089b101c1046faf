package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"
)

// Source gives read and append access to ranges of a workbook
type Source interface {
	// LoadRows returns the values of an A1 range. Trailing empty rows and
	// trailing empty cells of each row are omitted.
	LoadRows(ctx context.Context, rangeA1 string) ([][]string, error)
	// AppendRows appends rows after the last non-empty row of the range's
	// table and returns the 1-based row number of the first appended row.
	AppendRows(ctx context.Context, rangeA1 string, rows [][]string) (int, error)
}

// Grid is an in-memory workbook. It backs the bucket source and the local
// CSV tooling, and is handy in tests.
type Grid struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

// NewGrid creates an empty workbook
func NewGrid() *Grid {
	return &Grid{sheets: make(map[string][][]string)}
}

// SetSheet replaces the content of a sheet, row 1 first
func (g *Grid) SetSheet(name string, rows [][]string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	g.sheets[name] = copied
}

// Sheet returns a copy of the raw content of a sheet
func (g *Grid) Sheet(name string) [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := g.sheets[name]
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	return copied
}

// LoadRows implements Source
func (g *Grid) LoadRows(ctx context.Context, rangeA1 string) ([][]string, error) {
	r, err := ParseRange(rangeA1)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	sheet, ok := g.sheets[r.Sheet]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rangeA1)
	}

	firstRow, lastRow := bounds(r.StartRow, r.EndRow, len(sheet))
	firstCol := max(r.StartCol, 1)

	var values [][]string
	for i := firstRow; i <= lastRow; i++ {
		row := sheet[i-1]
		lastCol := len(row)
		if r.EndCol != 0 && r.EndCol < lastCol {
			lastCol = r.EndCol
		}

		var cells []string
		if firstCol <= lastCol {
			cells = append(cells, row[firstCol-1:lastCol]...)
		}
		values = append(values, trimTrailing(cells))
	}

	// The table ends at the last row holding a value
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

// AppendRows implements Source
func (g *Grid) AppendRows(ctx context.Context, rangeA1 string, rows [][]string) (int, error) {
	r, err := ParseRange(rangeA1)
	if err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	sheet := g.sheets[r.Sheet]
	firstCol := max(r.StartCol, 1)

	// Find the end of the table within the range's columns
	next := len(sheet) + 1
	for next > 1 {
		row := sheet[next-2]
		if firstCol <= len(row) && len(trimTrailing(row[firstCol-1:])) > 0 {
			break
		}
		next--
	}
	if r.StartRow > next {
		next = r.StartRow
	}

	for i, values := range rows {
		rowIndex := next + i
		for len(sheet) < rowIndex {
			sheet = append(sheet, nil)
		}
		row := sheet[rowIndex-1]
		for len(row) < firstCol-1+len(values) {
			row = append(row, "")
		}
		copy(row[firstCol-1:], values)
		sheet[rowIndex-1] = row
	}
	g.sheets[r.Sheet] = sheet

	return next, nil
}

// ReadCSV loads one sheet from CSV data, replacing its content
func (g *Grid) ReadCSV(name string, r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading CSV for sheet %s: %w", name, err)
	}

	g.SetSheet(name, rows)
	return nil
}

// WriteCSV writes one sheet as CSV
func (g *Grid) WriteCSV(name string, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(g.Sheet(name)); err != nil {
		return fmt.Errorf("writing CSV for sheet %s: %w", name, err)
	}
	return nil
}

func bounds(start, end, length int) (int, int) {
	first := max(start, 1)
	last := length
	if end != 0 && end < last {
		last = end
	}
	return first, last
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}
