package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/grid"
)

// Summary is the per-sheet extraction report: records emitted and every
// recoverable anomaly encountered.
type Summary struct {
	Questions   int
	Options     int
	Facts       int
	Diagnostics []Diagnostic
}

// Extractor drives one sheet-processing run. It owns the per-run variant
// context and caches; build a fresh Extractor per sheet.
type Extractor struct {
	sheet    *grid.Sheet
	surveyID string
	sink     Sink
	mapper   *demomap.Mapper
	rec      *recorder
	log      *zap.SugaredLogger

	sctx    *Context
	cols    []boundColumn
	options map[int64]map[string]int64 // question id -> option text -> option id
	orders  map[int64]int              // question id -> last assigned option order
	summary Summary
}

// New builds an extractor for one sheet of one survey.
func New(sheet *grid.Sheet, surveyID string, sink Sink, mapper *demomap.Mapper, log *zap.SugaredLogger) *Extractor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Extractor{
		sheet:    sheet,
		surveyID: surveyID,
		sink:     sink,
		mapper:   mapper,
		rec:      newRecorder(log),
		log:      log,
		sctx:     NewContext(),
		options:  make(map[int64]map[string]int64),
		orders:   make(map[int64]int),
	}
}

// Run extracts the whole sheet. Per-block anomalies are recovered locally
// and reported in the summary; only structural failures (no usable grid, a
// failing sink) abort the run.
func (e *Extractor) Run(ctx context.Context) (*Summary, error) {
	if e.sheet == nil || e.sheet.Rows() == 0 {
		return nil, errors.Wrap(errors.ErrSheetMissing, "no grid to extract")
	}
	if err := e.bindColumns(ctx); err != nil {
		return nil, err
	}

	sc := NewBlockScanner(e.sheet)
	for sc.Scan() {
		if err := e.processBlock(ctx, sc.Block()); err != nil {
			return nil, err
		}
	}

	e.summary.Diagnostics = e.rec.diags
	e.log.Infow("sheet extracted",
		"survey", e.surveyID,
		"sheet", e.sheet.Name,
		"questions", e.summary.Questions,
		"options", e.summary.Options,
		"facts", e.summary.Facts,
		"anomalies", len(e.summary.Diagnostics),
	)
	return &e.summary, nil
}

// processBlock handles one table block: question text assembly, variant
// classification, question record construction, then the data rows.
func (e *Extractor) processBlock(ctx context.Context, b Block) error {
	text, stop, reason := assembleUntil(e.sheet, b.Start+1, b.End)
	if reason == stopLimit {
		e.rec.warn(ReasonTruncatedQuestion, b, fmt.Sprintf("assembly stopped after %d rows", maxQuestionRows))
	}

	number, demographic, ok := ParseQuestionNumber(text)
	if !ok {
		if reason == stopSummary || isSummaryText(text) {
			// Summary rows without a question number have no stem to land
			// on; the whole block is dropped.
			detail := clip(text, 100)
			if detail == "" {
				detail = "bare summary heading"
			}
			e.rec.warn(ReasonOrphanSummary, b, detail)
		} else {
			e.rec.warnErr(ReasonUnmatchedQuestion, b,
				errors.Wrapf(errors.ErrNoQuestionNumber, "%s", clip(text, 100)))
		}
		return nil
	}

	base := findBase(e.sheet, stop, b.End)
	st := e.sctx.state(number)
	summaryTable := isSummaryText(text)

	var active int64
	switch {
	case st.stemID == 0:
		// First sighting of this number: emit the stem. The first summary
		// table also lands here; its heading carries the stem text.
		id, err := e.sink.EmitQuestion(ctx, &Question{
			SurveyID:        e.surveyID,
			Number:          number,
			Part:            1,
			Text:            text,
			IsDemographic:   demographic,
			BaseDescription: base,
		})
		if err != nil {
			return errors.Wrapf(err, "stem question %s", number)
		}
		st.stemID = id
		st.stemText = text
		st.nextPart = 2
		if summaryTable || reason == stopBullet {
			st.inVariantMode = true
		}
		e.summary.Questions++
		active = id

	case summaryTable:
		// Subsequent summary presentation: suppress question creation and
		// fold its rows into the existing stem so summary-only rollups are
		// not lost.
		st.inVariantMode = true
		active = st.stemID

	default:
		// Re-encountered question number: reuse the stem; bullets in the
		// data rows switch to the right variant.
		active = st.stemID
	}

	return e.processRows(ctx, b, stop, number, base, st, active)
}

// processRows walks the data region of a block, switching the active
// question on bullet boundaries and emitting answer options and facts.
func (e *Extractor) processRows(ctx context.Context, b Block, start int, number, base string, st *questionState, active int64) error {
	for r := start; r < b.End; r++ {
		lead := e.sheet.Lead(r)
		switch {
		case lead == "":
			// Spacer or numeric-lead row; answer rows carry a text label.
			continue

		case strings.HasPrefix(lead, basePrefix):
			continue // captured by findBase

		case isSummaryHeading(lead):
			// Legacy format: a bare Summary heading flags variant mode.
			st.inVariantMode = true
			continue

		case strings.HasPrefix(lead, bulletPrefix):
			label := strings.TrimSpace(strings.TrimPrefix(lead, bulletPrefix))
			if strings.HasPrefix(strings.ToLower(label), "summary") {
				// "- Summary" creates no question of its own.
				st.inVariantMode = true
				continue
			}
			id, err := e.variantFor(ctx, st, number, label, base, b)
			if err != nil {
				return err
			}
			active = id
			if e.rowHasNumeric(r) {
				// The bullet row carries the variant's overall numbers.
				if err := e.emitOptionRow(ctx, r, active, overallLabel); err != nil {
					return err
				}
			}

		default:
			if !e.rowHasNumeric(r) {
				continue
			}
			if err := e.emitOptionRow(ctx, r, active, lead); err != nil {
				return err
			}
		}
	}
	return nil
}

// variantFor resolves a bullet label to its variant question, creating it
// with the next contiguous part number on first sighting. A bullet with no
// prior stem is malformed ordering: a fallback stem is synthesized from the
// bullet text and flagged, rather than failing the file.
func (e *Extractor) variantFor(ctx context.Context, st *questionState, number, label, base string, b Block) (int64, error) {
	if st.stemID == 0 {
		id, err := e.sink.EmitQuestion(ctx, &Question{
			SurveyID:        e.surveyID,
			Number:          number,
			Part:            1,
			Text:            label,
			BaseDescription: base,
		})
		if err != nil {
			return 0, errors.Wrapf(err, "synthetic stem %s", number)
		}
		e.rec.warn(ReasonSyntheticStem, b, fmt.Sprintf("%s from bullet %q", number, clip(label, 60)))
		st.stemID = id
		st.stemText = label
		st.nextPart = 2
		st.inVariantMode = true
		e.summary.Questions++
		return id, nil
	}

	st.inVariantMode = true
	if id, ok := st.variants[label]; ok {
		return id, nil
	}

	part := st.nextPart
	st.nextPart++
	id, err := e.sink.EmitQuestion(ctx, &Question{
		SurveyID:        e.surveyID,
		Number:          number,
		Part:            part,
		Text:            label,
		BaseDescription: base,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "variant %s part %d", number, part)
	}
	st.variants[label] = id
	e.summary.Questions++
	e.log.Debugw("variant created",
		"question", number,
		"part", part,
		"text", clip(label, 60),
	)
	return id, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
