package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crosstab/crosstab/cmd/crosstab/commands"
	"github.com/crosstab/crosstab/logger"
)

var rootCmd = &cobra.Command{
	Use:   "crosstab",
	Short: "crosstab - Survey tabulation extraction engine",
	Long: `crosstab - Extract normalized survey data from tabulation workbooks.

Workbooks carry one irregular tabulation sheet per polling wave. crosstab
scans its table blocks, assembles question text, resolves demographic
columns and persists questions, answer options and response facts to a
local SQLite database.

Available commands:
  ingest  - Process workbooks from a directory into the database
  analyze - Print the block structure of a workbook sheet
  export  - Export database tables to CSV

Examples:
  crosstab ingest ./data              # Ingest every workbook under ./data
  crosstab analyze AA_Apr24.xlsx      # Inspect block structure
  crosstab export -o out/             # Dump all tables as CSV`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(commands.JSONLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Path to a crosstab.toml configuration file")
	rootCmd.PersistentFlags().BoolVar(&commands.JSONLogs, "json", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.ExportCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
