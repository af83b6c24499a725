package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/extract"
	"github.com/crosstab/crosstab/grid"
	"github.com/crosstab/crosstab/logger"
)

// AnalyzeCmd prints the block structure of a workbook without touching the
// database. Useful when a wave's sheet does not extract cleanly.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <workbook.xlsx>",
	Short: "Print the block structure of a workbook sheet",
	Long: `Print the table blocks of a workbook's tabulation sheet: row ranges,
detected question numbers and assembled question text.

Examples:
  crosstab analyze AA_Apr24.xlsx
  crosstab analyze --sheet P2 AA_Apr24.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeSheetFlag string

func init() {
	AnalyzeCmd.Flags().StringVar(&analyzeSheetFlag, "sheet", "", "Sheet name (defaults to the configured sheet)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	sheetName := cfg.Ingest.Sheet
	if analyzeSheetFlag != "" {
		sheetName = analyzeSheetFlag
	}

	sheet, err := grid.LoadXLSX(args[0], sheetName, logger.Logger)
	if err != nil {
		return err
	}

	infos := extract.Analyze(sheet)
	fmt.Printf("Sheet %s: %d rows, %d columns, %d blocks\n\n",
		sheet.Name, sheet.Rows(), sheet.Cols(), len(infos))

	for i, info := range infos {
		number := info.Number
		switch {
		case number == "":
			number = "(no question number)"
		case info.Demographic:
			number += " [demographic]"
		}
		fmt.Printf("Block %d  rows %d-%d  %s\n", i+1, info.Start, info.End-1, number)
		if info.Text != "" {
			fmt.Printf("  text: %s\n", info.Text)
		}
		if info.Base != "" {
			fmt.Printf("  base: %s\n", info.Base)
		}
	}
	return nil
}
