package extract

import "go.uber.org/zap"

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Reason classifies a recoverable anomaly.
type Reason string

const (
	// ReasonUnmatchedQuestion: question text carried no Q/QD number token.
	ReasonUnmatchedQuestion Reason = "unmatched_question_pattern"
	// ReasonUnresolvedColumn: the mapper does not know a column header.
	ReasonUnresolvedColumn Reason = "unresolved_column"
	// ReasonTruncatedQuestion: question text assembly hit the safety limit.
	ReasonTruncatedQuestion Reason = "question_text_truncated"
	// ReasonSyntheticStem: a bullet arrived with no prior stem; a fallback
	// stem was synthesized from the bullet text.
	ReasonSyntheticStem Reason = "synthesized_fallback_stem"
	// ReasonOrphanSummary: summary rows could not be attributed to a stem
	// and were discarded.
	ReasonOrphanSummary Reason = "orphan_summary_rows"
)

// Diagnostic records one recoverable anomaly with the block it arose in.
// Err carries the sentinel-wrapped cause when the anomaly maps to one
// (errors.ErrNoQuestionNumber, errors.ErrUnresolvedColumn); callers check it
// with errors.Is.
type Diagnostic struct {
	Severity Severity
	StartRow int
	EndRow   int
	Reason   Reason
	Detail   string
	Err      error
}

// recorder both logs diagnostics as they occur and collects them for the
// per-sheet summary. One malformed block never aborts the rest of the sheet;
// it leaves a diagnostic instead.
type recorder struct {
	log   *zap.SugaredLogger
	diags []Diagnostic
}

func newRecorder(log *zap.SugaredLogger) *recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &recorder{log: log}
}

func (r *recorder) warn(reason Reason, b Block, detail string) {
	r.record(SeverityWarn, reason, b, detail, nil)
}

// warnErr records a recoverable anomaly whose cause is a sentinel-wrapped
// error; the message doubles as the diagnostic detail.
func (r *recorder) warnErr(reason Reason, b Block, err error) {
	r.record(SeverityWarn, reason, b, err.Error(), err)
}

func (r *recorder) record(sev Severity, reason Reason, b Block, detail string, err error) {
	d := Diagnostic{
		Severity: sev,
		StartRow: b.Start,
		EndRow:   b.End,
		Reason:   reason,
		Detail:   detail,
		Err:      err,
	}
	r.diags = append(r.diags, d)

	fields := []interface{}{
		"reason", string(reason),
		"block_start", b.Start,
		"block_end", b.End,
		"detail", detail,
	}
	if sev == SeverityError {
		r.log.Errorw("extraction anomaly", fields...)
	} else {
		r.log.Warnw("extraction anomaly", fields...)
	}
}
