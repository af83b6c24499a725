// Package grid models a normalized tabulation sheet as a rectangular grid of
// typed cell values. Cell values are resolved to a small tagged union
// (empty, text, numeric) once at load time so the extraction core never has
// to re-guess what a cell holds.
package grid

import (
	"strconv"
	"strings"
)

// Kind discriminates the cell value union.
type Kind int

const (
	// Empty is a blank cell. Blank never means zero.
	Empty Kind = iota
	// Text is a non-numeric string cell.
	Text
	// Numeric is a cell whose content parses as a number.
	Numeric
)

// Cell is one grid cell, resolved at load time.
type Cell struct {
	Kind Kind
	Text string  // raw trimmed text, set for Text and Numeric kinds
	Num  float64 // parsed value, valid only when Kind == Numeric
}

// IsEmpty reports whether the cell is blank.
func (c Cell) IsEmpty() bool { return c.Kind == Empty }

// IsNumeric reports whether the cell holds a number.
func (c Cell) IsNumeric() bool { return c.Kind == Numeric }

// Float returns the numeric value, or nil for non-numeric cells.
// Blank and text cells yield nil, never zero.
func (c Cell) Float() *float64 {
	if c.Kind != Numeric {
		return nil
	}
	v := c.Num
	return &v
}

// ParseCell resolves raw cell text into a Cell. Numeric detection tolerates
// thousands separators ("1,234"), surrounding whitespace and a trailing
// percent sign as produced by tabulation exports.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: Empty}
	}
	if v, ok := parseNumber(trimmed); ok {
		return Cell{Kind: Numeric, Text: trimmed, Num: v}
	}
	return Cell{Kind: Text, Text: trimmed}
}

func parseNumber(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
