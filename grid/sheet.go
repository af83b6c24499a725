package grid

// Sheet is a rectangular grid of resolved cells plus the column headers
// identifying demographic segments. It is the input contract of the
// extraction core: the sheet is assumed already normalized (no fully-empty
// rows or columns, headers uniquified).
type Sheet struct {
	Name    string
	headers []string
	rows    [][]Cell
}

// NewSheet builds a Sheet from headers and pre-resolved rows. Short rows are
// padded implicitly: Cell() returns an empty cell for out-of-range access.
func NewSheet(name string, headers []string, rows [][]Cell) *Sheet {
	return &Sheet{Name: name, headers: headers, rows: rows}
}

// NewSheetFromStrings builds a Sheet from raw string rows, resolving every
// cell through ParseCell. Intended for tests and for loaders that produce
// text matrices.
func NewSheetFromStrings(name string, headers []string, raw [][]string) *Sheet {
	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = ParseCell(v)
		}
		rows[i] = cells
	}
	return NewSheet(name, headers, rows)
}

// Rows returns the number of data rows.
func (s *Sheet) Rows() int { return len(s.rows) }

// Cols returns the number of columns, per the header row.
func (s *Sheet) Cols() int { return len(s.headers) }

// Cell returns the cell at (row, col). Out-of-range access yields an empty
// cell; ragged source rows are common in human-formatted sheets.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.rows) {
		return Cell{Kind: Empty}
	}
	r := s.rows[row]
	if col < 0 || col >= len(r) {
		return Cell{Kind: Empty}
	}
	return r[col]
}

// Header returns the header of the given column, or "" when out of range.
func (s *Sheet) Header(col int) string {
	if col < 0 || col >= len(s.headers) {
		return ""
	}
	return s.headers[col]
}

// Lead returns the trimmed text of the row's leading cell, or "" when the
// leading cell is blank or numeric. The leading column carries all control
// lines: table markers, question text, Base: lines, bullets, answer labels.
func (s *Sheet) Lead(row int) string {
	c := s.Cell(row, 0)
	if c.Kind != Text {
		return ""
	}
	return c.Text
}
