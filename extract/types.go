// Package extract converts a normalized tabulation grid into relational
// survey facts: questions (including multi-part variants), answer options,
// and per-demographic response counts/percentages.
//
// Processing is single-threaded and strictly sequential per sheet: row order
// is semantically significant, with variant state carried block to block.
// Independent sheets may be extracted in parallel by the caller, each with
// its own Extractor.
package extract

import "context"

// Question is one question or one part of a multi-part question.
// The stem carries Part 1; bullet-induced variants follow with contiguous
// part numbers.
type Question struct {
	SurveyID        string
	Number          string // e.g. "Q11", "Q2A", "QD3"
	Part            int
	Text            string
	IsDemographic   bool
	BaseDescription string // stated population, "" when the sheet names none
}

// AnswerOption is one distinct answer choice for a question, unique per
// (question, option text).
type AnswerOption struct {
	QuestionID int64
	Text       string
	Order      int
}

// ResponseFact is one count/percent observation for an answer option in a
// demographic column. The Total fact has a nil DemoID and carries the
// authoritative respondent count; it is read from the Total column directly,
// never derived by summing segment facts.
type ResponseFact struct {
	SurveyID   string
	QuestionID int64
	OptionID   int64
	DemoID     *int64 // nil for the Total fact
	ItemLabel  string
	Count      *float64 // nil when the cell is blank, never zero
	Percent    *float64
}

// Sink receives extracted records. Every emission must be idempotent
// (upsert) at the sink: the extractor may re-emit the same logical entity
// and relies on stable natural keys, not on being the first writer.
type Sink interface {
	// EmitQuestion persists a question and returns its identifier.
	// Re-emitting the same (survey, number, part) returns the same entity.
	EmitQuestion(ctx context.Context, q *Question) (int64, error)

	// EmitAnswerOption persists an answer option and returns its identifier.
	// Re-emitting the same (question, text) reuses the existing option.
	EmitAnswerOption(ctx context.Context, o *AnswerOption) (int64, error)

	// EmitResponseFact persists one observation.
	EmitResponseFact(ctx context.Context, f *ResponseFact) error

	// ResolveDemographic looks up the identifier for a demographic value
	// code. Demographics are reference data: they are looked up, never
	// created, by the extraction core. Unknown codes return an error
	// wrapping errors.ErrNotFound.
	ResolveDemographic(ctx context.Context, code string) (int64, error)
}
