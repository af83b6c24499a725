package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	sheet := sheetOf(t, stdHeaders,
		[]string{"Table"},
		[]string{"Q1. Do you approve of the"},
		[]string{"Government's record?"},
		[]string{"Base: All adults"},
		[]string{"Approve", "412", "41.3", "210", "50.0", "88", "39.1"},
		[]string{"Table"},
		[]string{"First quarter summary"},
		[]string{"Something", "10", "1.0", "5", "1.0", "5", "1.0"},
	)

	infos := Analyze(sheet)
	require.Len(t, infos, 2)

	assert.Equal(t, "Q1", infos[0].Number)
	assert.False(t, infos[0].Demographic)
	assert.Equal(t, "Q1. Do you approve of the Government's record?", infos[0].Text)
	assert.Equal(t, "All adults", infos[0].Base)

	// No question number in the second block.
	assert.Empty(t, infos[1].Number)
	assert.Equal(t, "First quarter summary", infos[1].Text)
	assert.Empty(t, infos[1].Base)
}
