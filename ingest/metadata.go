// Package ingest drives end-to-end workbook ingestion: filename metadata,
// sheet loading, extraction and persistence, with bounded concurrency across
// files.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/crosstab/crosstab/errors"
)

// Metadata is what a workbook filename encodes about the polling wave.
type Metadata struct {
	SurveyID string // e.g. "AA-042024"
	Month    int
	Year     int
}

// Filenames look like AA_Apr24.xlsx, optionally with a suffix such as
// AA_Apr24-final.xlsx.
var filenamePattern = regexp.MustCompile(`^AA_([A-Za-z]+)(\d{2})(?:-[A-Za-z0-9_]+)?\.xlsx$`)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseFilename derives wave metadata from a workbook filename. The survey
// identifier is AA-<mm><yyyy>, zero-padded, with two-digit years taken as
// 2000-based.
func ParseFilename(filename string) (*Metadata, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return nil, errors.Wrapf(errors.ErrBadFilename, "%s", filename)
	}

	monthName := strings.ToLower(m[1])
	if len(monthName) > 3 {
		monthName = monthName[:3]
	}
	month, ok := months[monthName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrBadFilename, "%s: unknown month %q", filename, m[1])
	}

	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrBadFilename, "%s", filename)
	}
	year := 2000 + yy

	return &Metadata{
		SurveyID: fmt.Sprintf("AA-%02d%d", month, year),
		Month:    month,
		Year:     year,
	}, nil
}
