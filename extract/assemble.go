package extract

import (
	"strings"

	"github.com/crosstab/crosstab/grid"
)

// maxQuestionRows bounds question text assembly. Hitting the limit is a
// recoverable condition: the partial text is kept and flagged.
const maxQuestionRows = 10

// basePrefix marks the stated-population line of a block.
const basePrefix = "Base:"

// bulletPrefix marks a variant boundary.
const bulletPrefix = "-"

// stopReason says why question text assembly stopped.
type stopReason int

const (
	// stopEnd: the block ran out of rows.
	stopEnd stopReason = iota
	// stopBase: next row is a "Base:" line.
	stopBase
	// stopBullet: next row is a bullet, a variant boundary.
	stopBullet
	// stopTable: next row starts another table block.
	stopTable
	// stopSummary: next row is a bare legacy "Summary" heading.
	stopSummary
	// stopData: next row has no leading text, so the data region begins.
	stopData
	// stopLimit: the safety limit was hit; partial text kept.
	stopLimit
)

// assembleUntil accumulates question text across rows [start, end), joining
// each row's leading cell text with a single space. It stops without
// consuming the triggering row on a Base: line, a bullet, another table
// marker, a legacy Summary heading, a non-text row, or the safety limit.
// It returns the assembled text, the row it stopped at, and why.
func assembleUntil(sheet *grid.Sheet, start, end int) (string, int, stopReason) {
	var parts []string
	row := start
	for row < end {
		if len(parts) >= maxQuestionRows {
			return strings.Join(parts, " "), row, stopLimit
		}
		lead := sheet.Lead(row)
		switch {
		case lead == "":
			return strings.Join(parts, " "), row, stopData
		case strings.HasPrefix(lead, basePrefix):
			return strings.Join(parts, " "), row, stopBase
		case strings.HasPrefix(lead, bulletPrefix):
			return strings.Join(parts, " "), row, stopBullet
		case isBlockStart(lead):
			return strings.Join(parts, " "), row, stopTable
		case isSummaryHeading(lead):
			return strings.Join(parts, " "), row, stopSummary
		}
		parts = append(parts, lead)
		row++
	}
	return strings.Join(parts, " "), row, stopEnd
}

// isSummaryHeading recognizes the older sheet convention: an isolated
// "Summary" (or "Summary Table") heading where a bullet would otherwise be.
func isSummaryHeading(lead string) bool {
	l := strings.ToLower(strings.TrimSpace(lead))
	return l == "summary" || strings.Contains(l, "summary table")
}

// isSummaryText recognizes the newer convention: a "- Summary" suffix on the
// assembled question text of a rollup table.
func isSummaryText(text string) bool {
	return strings.Contains(strings.ToLower(text), "summary")
}
