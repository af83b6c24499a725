// Package commands holds the crosstab CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crosstab/crosstab/config"
	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/ingest"
	"github.com/crosstab/crosstab/logger"
	"github.com/crosstab/crosstab/store"
)

// Shared persistent flag values, bound by the root command.
var (
	ConfigPath string
	JSONLogs   bool
)

// loadConfig honors --config when given, otherwise the usual search order.
func loadConfig() (*config.Config, error) {
	if ConfigPath != "" {
		return config.LoadFromFile(ConfigPath)
	}
	return config.Load()
}

// IngestCmd processes tabulation workbooks into the database.
var IngestCmd = &cobra.Command{
	Use:   "ingest [dir | file...]",
	Short: "Process tabulation workbooks into the database",
	Long: `Process workbooks into the database, either a whole directory or an
explicit list of files.

Files already recorded as processed are skipped, so the command is safe to
re-run over a growing directory. With no arguments the configured ingest.dir
is scanned.

Examples:
  crosstab ingest                        # Ingest from the configured directory
  crosstab ingest ./data                 # Ingest from ./data
  crosstab ingest data/AA_Apr24.xlsx     # Ingest one workbook
  crosstab ingest --workers 1 ./data     # Process files one at a time`,
	RunE: runIngest,
}

var ingestWorkersFlag int

func init() {
	IngestCmd.Flags().IntVar(&ingestWorkersFlag, "workers", 0, "Concurrent files (0 uses the configured value)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	workers := cfg.Ingest.Workers
	if ingestWorkersFlag > 0 {
		workers = ingestWorkersFlag
	}

	s, err := store.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	mapper := demomap.New()
	if unknown := mapper.WithOverrides(cfg.Columns.Overrides); len(unknown) > 0 {
		logger.Warnw("Ignoring column overrides with unknown demographic codes",
			"codes", unknown,
		)
	}
	if err := s.SeedDemographics(cmd.Context(), mapper.Descriptors()); err != nil {
		return err
	}

	runner := &ingest.Runner{
		Store:   s,
		Mapper:  mapper,
		Sheet:   cfg.Ingest.Sheet,
		Workers: workers,
		Log:     logger.Logger,
	}

	report, err := runWith(cmd, runner, args, cfg.Ingest.Dir)
	if report != nil {
		fmt.Printf("Processed %d file(s), skipped %d, failed %d\n",
			report.Processed, report.Skipped, report.Failed)
		fmt.Printf("Questions: %d  Facts: %d\n", report.Questions, report.Facts)
	}
	return err
}

// runWith dispatches on the arguments: none means the configured directory,
// a single directory argument means that directory, anything else is an
// explicit file list.
func runWith(cmd *cobra.Command, runner *ingest.Runner, args []string, defaultDir string) (*ingest.Report, error) {
	if len(args) == 0 {
		return runner.RunDir(cmd.Context(), defaultDir)
	}
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return runner.RunDir(cmd.Context(), args[0])
		}
	}
	return runner.RunFiles(cmd.Context(), args)
}
