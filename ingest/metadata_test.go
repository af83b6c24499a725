package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstab/crosstab/errors"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		surveyID string
		month    int
		year     int
	}{
		{"short month", "AA_Apr24.xlsx", "AA-042024", 4, 2024},
		{"full month name", "AA_January23.xlsx", "AA-012023", 1, 2023},
		{"lowercase month", "AA_dec22.xlsx", "AA-122022", 12, 2022},
		{"suffix after wave", "AA_Jun24-final.xlsx", "AA-062024", 6, 2024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseFilename(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.surveyID, meta.SurveyID)
			assert.Equal(t, tt.month, meta.Month)
			assert.Equal(t, tt.year, meta.Year)
		})
	}
}

func TestParseFilenameRejects(t *testing.T) {
	for _, filename := range []string{
		"BB_Apr24.xlsx",
		"AA_Apr24.csv",
		"AA_Xyz24.xlsx",
		"AA_24.xlsx",
		"notes.txt",
	} {
		t.Run(filename, func(t *testing.T) {
			_, err := ParseFilename(filename)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrBadFilename)
		})
	}
}
