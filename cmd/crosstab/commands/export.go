package commands

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/logger"
	"github.com/crosstab/crosstab/store"
)

// exportTables lists the tables dumped by export, in dependency order.
var exportTables = []string{
	"surveys",
	"questions",
	"answer_options",
	"demographics",
	"response_facts",
	"processed_files",
}

// ExportCmd dumps the database tables to CSV files.
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export database tables to CSV",
	Long: `Export every table of the database as a CSV file, one file per table,
named after the table.

Examples:
  crosstab export                # Write CSVs to the current directory
  crosstab export out/           # Write CSVs under out/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportDirFlag string

func init() {
	ExportCmd.Flags().StringVarP(&exportDirFlag, "output", "o", ".", "Directory to write CSV files to")
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		exportDirFlag = args[0]
	}
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	s, err := store.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := os.MkdirAll(exportDirFlag, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", exportDirFlag)
	}

	for _, table := range exportTables {
		path := filepath.Join(exportDirFlag, table+".csv")
		rows, err := exportTable(s.DB(), table, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d row(s) -> %s\n", table, rows, path)
	}
	return nil
}

// exportTable writes one table to path and returns the row count.
func exportTable(db *sql.DB, table, path string) (int, error) {
	rows, err := db.Query("SELECT * FROM " + table)
	if err != nil {
		return 0, errors.Wrapf(err, "query %s", table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrapf(err, "columns of %s", table)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return 0, errors.Wrapf(err, "write header for %s", table)
	}

	values := make([]sql.NullString, len(cols))
	scan := make([]interface{}, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}

	count := 0
	record := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return count, errors.Wrapf(err, "scan row of %s", table)
		}
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return count, errors.Wrapf(err, "write row of %s", table)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, errors.Wrapf(err, "iterate %s", table)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, errors.Wrapf(err, "flush %s", path)
	}
	return count, nil
}
