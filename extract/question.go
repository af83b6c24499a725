package extract

import (
	"regexp"
	"strings"

	"github.com/crosstab/crosstab/grid"
)

// questionPattern is one entry of the declarative question-number table.
// New survey-wave formats are added here, by data, not by new control flow.
type questionPattern struct {
	re            *regexp.Regexp
	isDemographic bool
	canonical     func(m []string) string
}

// Ordered: the QD pattern must win before the plain Q pattern can eat the
// "Q" of "QD". All patterns are case-insensitive, tolerate an optional dot
// after the Q, and a trailing period on the token.
var questionPatterns = []questionPattern{
	{
		re:            regexp.MustCompile(`(?i)^Q\.?D(\d+)\.?(?:\s|$)`),
		isDemographic: true,
		canonical:     func(m []string) string { return "QD" + m[1] },
	},
	{
		re:            regexp.MustCompile(`(?i)^Q\.?(\d+)([A-Za-z])?\.?(?:\s|$)`),
		isDemographic: false,
		canonical: func(m []string) string {
			return "Q" + m[1] + strings.ToUpper(m[2])
		},
	},
}

// ParseQuestionNumber extracts the question number token from the start of
// assembled question text. QD marks a demographic question. The third return
// is false when no pattern matches; that is a recoverable condition for the
// caller, not a fatal one.
func ParseQuestionNumber(text string) (number string, demographic bool, ok bool) {
	trimmed := strings.TrimSpace(text)
	for _, p := range questionPatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return strings.ToUpper(p.canonical(m)), p.isDemographic, true
		}
	}
	return "", false, false
}

// findBase scans rows [from, to) for a line starting with "Base:" and
// returns the remainder verbatim (trimmed). Absence is valid and returns "".
func findBase(sheet *grid.Sheet, from, to int) string {
	for r := from; r < to; r++ {
		lead := sheet.Lead(r)
		if strings.HasPrefix(lead, basePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(lead, basePrefix))
		}
	}
	return ""
}
