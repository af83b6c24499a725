package extract

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
)

// totalLabel is the item label of the authoritative Total fact.
const totalLabel = "Total"

// overallLabel is the option label used when a bullet row itself carries the
// variant's numbers: the bullet text is the variant's question text, so the
// row is recorded as the variant's overall figure rather than as an answer
// choice.
const overallLabel = "(overall)"

// maxPct is the storage precision bound for percentages (DECIMAL(5,2)).
const maxPct = 999.99

// roundPct rounds half away from zero to two decimals and clamps to the
// storable range. Out-of-range values are clamped, never discarded.
// The tiny bias counters binary representation error so printed half values
// like 100.005 round up as written.
func roundPct(v float64) float64 {
	r := math.Round(v*100+math.Copysign(1e-6, v)) / 100
	if r > maxPct {
		return maxPct
	}
	if r < -maxPct {
		return -maxPct
	}
	return r
}

// boundColumn ties a sheet column group to its demographic identity:
// the count column bearing the header and, when present, the adjacent
// unnamed percent column.
type boundColumn struct {
	label    string // item label as printed (column header)
	demoID   *int64 // nil for the Total column
	countCol int
	pctCol   int // -1 when the sheet carries no percent column for the group
}

// fillerHeader matches the placeholder names normalization assigns to blank
// header cells; such columns are percent companions, not segments.
var fillerHeader = regexp.MustCompile(`^col_\d+$`)

// bindColumns resolves every column header through the mapper once per run.
// Unresolvable headers are skipped with a diagnostic, never silently merged
// into another dimension. The Total column is required; a sheet without one
// is structurally unusable.
func (e *Extractor) bindColumns(ctx context.Context) error {
	sheetSpan := Block{Start: 0, End: e.sheet.Rows()}
	haveTotal := false

	for col := 1; col < e.sheet.Cols(); col++ {
		header := strings.TrimSpace(e.sheet.Header(col))
		if header == "" || fillerHeader.MatchString(header) || header == "%" {
			continue // percent companion or spacer, claimed by its group
		}

		if demomap.IsTotal(header) {
			e.cols = append(e.cols, boundColumn{
				label:    totalLabel,
				countCol: col,
				pctCol:   e.percentColumnAfter(col),
			})
			haveTotal = true
			continue
		}

		d, ok := e.mapper.Resolve(header)
		if !ok {
			e.rec.warnErr(ReasonUnresolvedColumn, sheetSpan,
				errors.Wrapf(errors.ErrUnresolvedColumn, "column %s", header))
			continue
		}
		demoID, err := e.sink.ResolveDemographic(ctx, d.Code)
		if err != nil {
			if errors.IsNotFoundError(err) {
				e.rec.warnErr(ReasonUnresolvedColumn, sheetSpan,
					errors.Wrapf(errors.ErrUnresolvedColumn, "column %s (code %s not seeded)", header, d.Code))
				continue
			}
			return errors.Wrapf(err, "resolve demographic %s", d.Code)
		}
		e.cols = append(e.cols, boundColumn{
			label:    header,
			demoID:   &demoID,
			countCol: col,
			pctCol:   e.percentColumnAfter(col),
		})
	}

	if !haveTotal {
		return errors.Wrapf(errors.ErrSheetMissing, "sheet %s has no Total column", e.sheet.Name)
	}
	return nil
}

// percentColumnAfter returns the column index of the unnamed column
// immediately after col, which holds the group's percentages, or -1 when the
// wave layout prints counts only.
func (e *Extractor) percentColumnAfter(col int) int {
	next := col + 1
	if next >= e.sheet.Cols() {
		return -1
	}
	h := strings.TrimSpace(e.sheet.Header(next))
	if h == "" || h == "%" || fillerHeader.MatchString(h) {
		return next
	}
	return -1
}

// rowHasNumeric reports whether any bound column holds a number on the row.
// Rows without numbers are narrative, not observations.
func (e *Extractor) rowHasNumeric(row int) bool {
	for _, c := range e.cols {
		if e.sheet.Cell(row, c.countCol).IsNumeric() {
			return true
		}
		if c.pctCol >= 0 && e.sheet.Cell(row, c.pctCol).IsNumeric() {
			return true
		}
	}
	return false
}

// emitOptionRow records one data row: the answer option plus one fact per
// bound column. Blank cells yield nil counts/percents, never zero; columns
// with neither a count nor a percent contribute no fact.
func (e *Extractor) emitOptionRow(ctx context.Context, row int, questionID int64, optionText string) error {
	optionID, err := e.optionFor(ctx, questionID, optionText)
	if err != nil {
		return err
	}

	for _, c := range e.cols {
		cnt := e.sheet.Cell(row, c.countCol).Float()
		var pct *float64
		if c.pctCol >= 0 {
			if raw := e.sheet.Cell(row, c.pctCol).Float(); raw != nil {
				r := roundPct(*raw)
				pct = &r
			}
		}
		if cnt == nil && pct == nil {
			continue
		}

		fact := &ResponseFact{
			SurveyID:   e.surveyID,
			QuestionID: questionID,
			OptionID:   optionID,
			DemoID:     c.demoID,
			ItemLabel:  c.label,
			Count:      cnt,
			Percent:    pct,
		}
		if err := e.sink.EmitResponseFact(ctx, fact); err != nil {
			return errors.Wrapf(err, "fact for option %q column %q", optionText, c.label)
		}
		e.summary.Facts++
	}
	return nil
}

// optionFor returns the option id for (question, text), creating it with the
// next sequential order on first sighting. Re-encountering identical option
// text within the same question reuses the existing option.
func (e *Extractor) optionFor(ctx context.Context, questionID int64, text string) (int64, error) {
	byText, ok := e.options[questionID]
	if !ok {
		byText = make(map[string]int64)
		e.options[questionID] = byText
	}
	if id, ok := byText[text]; ok {
		return id, nil
	}

	order := e.orders[questionID] + 1
	e.orders[questionID] = order

	id, err := e.sink.EmitAnswerOption(ctx, &AnswerOption{
		QuestionID: questionID,
		Text:       text,
		Order:      order,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "answer option %q", text)
	}
	byText[text] = id
	e.summary.Options++
	return id, nil
}
