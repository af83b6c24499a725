package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionNumber(t *testing.T) {
	tests := []struct {
		text        string
		number      string
		demographic bool
		ok          bool
	}{
		{"Q1. How do you feel about speed cameras?", "Q1", false, true},
		{"Q11. Imagine you parked in a private car park", "Q11", false, true},
		{"Q2a. First sub question", "Q2A", false, true},
		{"q3 lowercase is tolerated", "Q3", false, true},
		{"Q.4 dotted prefix", "Q4", false, true},
		{"QD2. Gender", "QD2", true, true},
		{"qd1. Age of respondent", "QD1", true, true},
		{"Q12", "Q12", false, true}, // bare token, nothing after
		{"How do you feel about speed cameras?", "", false, false},
		{"Base: All respondents", "", false, false},
		{"Quarterly results were strong", "", false, false},
		{"", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			number, demographic, ok := ParseQuestionNumber(tt.text)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.demographic, demographic)
		})
	}
}

func TestFindBase(t *testing.T) {
	headers := []string{"Return to Index", "Total"}

	t.Run("captures remainder verbatim", func(t *testing.T) {
		s := sheetOf(t, headers,
			[]string{"- When used in school zones"},
			[]string{"Base: All respondents (1,234)"},
			[]string{"Agree", "900"},
		)
		assert.Equal(t, "All respondents (1,234)", findBase(s, 0, s.Rows()))
	})

	t.Run("absence is valid", func(t *testing.T) {
		s := sheetOf(t, headers,
			[]string{"Agree", "900"},
		)
		assert.Equal(t, "", findBase(s, 0, s.Rows()))
	})
}
