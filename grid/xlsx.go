package grid

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/crosstab/crosstab/errors"
)

// headerScanRows bounds the search for the demographic header row. The row
// naming the segments (Total, Male, ...) always sits near the top of a sheet.
const headerScanRows = 20

// LoadXLSX opens the workbook at path and returns the named sheet as a
// normalized Sheet: fully-empty rows and columns dropped, cells resolved to
// the typed union, and column headers taken from the demographic header row
// (the first row containing a "Total" cell).
//
// A missing sheet or unreadable workbook is fatal for the file and wraps
// errors.ErrSheetMissing.
func LoadXLSX(path, sheetName string, log *zap.SugaredLogger) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSheetMissing, "open workbook %s: %v", path, err)
	}
	defer f.Close()

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSheetMissing, "sheet %q in %s: %v", sheetName, path, err)
	}
	if len(raw) == 0 {
		return nil, errors.Wrapf(errors.ErrSheetMissing, "sheet %q in %s is empty", sheetName, path)
	}

	sheet := Normalize(sheetName, raw)
	if log != nil {
		log.Debugw("Loaded sheet",
			"path", path,
			"sheet", sheetName,
			"rows", sheet.Rows(),
			"cols", sheet.Cols(),
		)
	}
	return sheet, nil
}

// Normalize turns a raw string matrix into a Sheet: empty rows and columns are
// stripped, remaining cells are resolved, and headers come from the first row
// that mentions "Total" (blank headers are uniquified as col_N).
func Normalize(name string, raw [][]string) *Sheet {
	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}

	// Identify columns with at least one non-blank cell.
	used := make([]bool, width)
	for _, r := range raw {
		for j, v := range r {
			if strings.TrimSpace(v) != "" {
				used[j] = true
			}
		}
	}
	var keep []int
	for j, u := range used {
		if u {
			keep = append(keep, j)
		}
	}

	// Drop fully-empty rows and project onto the kept columns.
	var rows [][]Cell
	var texts [][]string
	for _, r := range raw {
		empty := true
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		cells := make([]Cell, len(keep))
		row := make([]string, len(keep))
		for i, j := range keep {
			if j < len(r) {
				cells[i] = ParseCell(r[j])
				row[i] = strings.TrimSpace(r[j])
			}
		}
		rows = append(rows, cells)
		texts = append(texts, row)
	}

	headers := detectHeaders(texts, len(keep))
	return NewSheet(name, headers, rows)
}

// detectHeaders finds the demographic header row and returns its texts as
// column headers. Blank header cells become col_N so headers stay unique.
func detectHeaders(rows [][]string, width int) []string {
	headerIdx := -1
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		for _, v := range rows[i] {
			if strings.EqualFold(v, "Total") {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}

	headers := make([]string, width)
	for j := range headers {
		if headerIdx >= 0 && j < len(rows[headerIdx]) && rows[headerIdx][j] != "" {
			headers[j] = rows[headerIdx][j]
		} else {
			headers[j] = fmt.Sprintf("col_%d", j)
		}
	}
	return headers
}
