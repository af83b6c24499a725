// Package errors provides error handling for crosstab.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for the extraction pipeline
//
// Usage:
//
//	// Wrap with context
//	if err := loadSheet(path); err != nil {
//	    return errors.Wrap(err, "load P1 sheet")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrSheetMissing) {
//	    // file is structurally unusable, skip it whole
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across crosstab.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrSheetMissing indicates the workbook has no usable tabulation sheet.
	// This is fatal for the file: no partial extraction is attempted.
	ErrSheetMissing = New("sheet missing")

	// ErrNoQuestionNumber indicates question text carried no recognizable
	// Q/QD number token. Recoverable: the block is skipped.
	ErrNoQuestionNumber = New("no question number in text")

	// ErrUnresolvedColumn indicates a demographic column header that the
	// mapper could not resolve. Recoverable: that column's facts are dropped.
	ErrUnresolvedColumn = New("unresolved demographic column")

	// ErrBadFilename indicates a filename that does not match the survey
	// naming convention and therefore carries no wave metadata.
	ErrBadFilename = New("filename does not match survey pattern")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsFatalForFile reports whether an error should abort the whole file
// rather than be recovered per-block.
func IsFatalForFile(err error) bool {
	return err != nil && Is(err, ErrSheetMissing)
}
