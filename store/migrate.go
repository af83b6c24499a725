package store

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/crosstab/crosstab/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// A migration is one embedded DDL step, named <version>_<description>.sql.
// The numeric prefix orders the steps and identifies each in the
// schema_migrations ledger.
type migration struct {
	version string
	name    string
	ddl     string
}

// Migrate brings the schema up to date. The lowest-numbered step creates the
// ledger itself with IF NOT EXISTS DDL, so it is executed unconditionally
// before the ledger can be consulted; every step not yet in the ledger then
// runs once, each in its own transaction.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	steps, err := loadMigrations()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return errors.New("no embedded migrations")
	}

	if _, err := db.Exec(steps[0].ddl); err != nil {
		return errors.Wrapf(err, "bootstrap ledger via %s", steps[0].name)
	}

	done, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range steps {
		if done[m.version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		if log != nil {
			log.Infow("Applied migration", "migration", m.name)
		}
	}
	return nil
}

// loadMigrations reads the embedded steps in version order.
func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "glob embedded migrations")
	}
	sort.Strings(names)

	steps := make([]migration, 0, len(names))
	for _, name := range names {
		base := path.Base(name)
		version, _, ok := strings.Cut(base, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", base)
		}
		ddl, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "read migration %s", base)
		}
		steps = append(steps, migration{version: version, name: base, ddl: string(ddl)})
	}
	return steps, nil
}

// appliedVersions reads the ledger into a set.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		done[v] = true
	}
	return done, rows.Err()
}

// applyMigration runs one step and records it, atomically.
func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin %s", m.name)
	}
	if _, err := tx.Exec(m.ddl); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "apply %s", m.name)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.name)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", m.name)
	}
	return nil
}
