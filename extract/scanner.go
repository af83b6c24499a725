package extract

import (
	"strings"

	"github.com/crosstab/crosstab/grid"
)

// blockMarker is the literal a block-start row begins with ("Table 12").
const blockMarker = "Table"

// Block is one table block, rows [Start, End).
type Block struct {
	Start int
	End   int
}

// BlockScanner partitions the row sequence into table blocks. Scanning is
// linear and single-pass; a new block begins at every row whose leading cell
// starts with the block marker, and the end of the grid closes the final
// block. Rows before the first marker are sheet-level noise and belong to no
// block.
//
// Usage follows bufio.Scanner:
//
//	sc := NewBlockScanner(sheet)
//	for sc.Scan() {
//	    b := sc.Block()
//	    ...
//	}
type BlockScanner struct {
	sheet *grid.Sheet
	next  int
	cur   Block
}

// NewBlockScanner returns a scanner positioned at the first block marker.
func NewBlockScanner(sheet *grid.Sheet) *BlockScanner {
	s := &BlockScanner{sheet: sheet}
	for s.next < sheet.Rows() && !isBlockStart(sheet.Lead(s.next)) {
		s.next++
	}
	return s
}

// Scan advances to the next block. It returns false when the grid is
// exhausted.
func (s *BlockScanner) Scan() bool {
	if s.next >= s.sheet.Rows() {
		return false
	}
	start := s.next
	end := start + 1
	for end < s.sheet.Rows() && !isBlockStart(s.sheet.Lead(end)) {
		end++
	}
	s.cur = Block{Start: start, End: end}
	s.next = end
	return true
}

// Block returns the current block. Valid only after a true Scan.
func (s *BlockScanner) Block() Block { return s.cur }

func isBlockStart(lead string) bool {
	return strings.HasPrefix(lead, blockMarker)
}
