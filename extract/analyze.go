package extract

import "github.com/crosstab/crosstab/grid"

// BlockInfo describes one table block for structural inspection, without
// touching a sink.
type BlockInfo struct {
	Start       int
	End         int
	Number      string // empty when no question number matched
	Demographic bool
	Text        string
	Base        string
}

// Analyze scans the sheet and reports its block structure. It is the
// read-only counterpart to a full extraction run, used by the analyze
// command to debug irregular workbooks.
func Analyze(sheet *grid.Sheet) []BlockInfo {
	var infos []BlockInfo
	sc := NewBlockScanner(sheet)
	for sc.Scan() {
		b := sc.Block()
		text, stopRow, _ := assembleUntil(sheet, b.Start+1, b.End)
		info := BlockInfo{
			Start: b.Start,
			End:   b.End,
			Text:  text,
			Base:  findBase(sheet, stopRow, b.End),
		}
		if number, demographic, ok := ParseQuestionNumber(text); ok {
			info.Number = number
			info.Demographic = demographic
		}
		infos = append(infos, info)
	}
	return infos
}
