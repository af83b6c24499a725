// Package store persists extracted survey facts to SQLite. Every write is an
// upsert on the entity's natural key, so re-processing the same sheet leaves
// row counts unchanged: the extractor guarantees stable keys, the store
// guarantees conflict resolution.
package store

import (
	"context"
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/extract"
)

var _ extract.Sink = (*Store)(nil)

// Store implements the extract sink contracts over a SQLite database.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger

	demoIDs map[string]int64 // demo_code -> demo_id cache
}

// Open opens (creating if needed) the database at path, applies pragmas and
// pending migrations, and returns a ready Store.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}

	// WAL for concurrent readers during ingestion writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, err
	}

	if log != nil {
		log.Infow("Database opened", "path", path)
	}
	return New(db, log), nil
}

// New wraps an existing database handle. Used by tests and by Open.
func New(db *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, log: log, demoIDs: make(map[string]int64)}
}

// DB exposes the underlying handle for read-only consumers (export).
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SeedDemographics upserts the demographic reference rows. The extraction
// core only ever looks demographics up; this is the one writer.
func (s *Store) SeedDemographics(ctx context.Context, ds []demomap.Descriptor) error {
	for _, d := range ds {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO demographics (demo_code, demo_dimension, demo_description)
			VALUES (?, ?, ?)
			ON CONFLICT(demo_code) DO UPDATE SET
				demo_dimension = excluded.demo_dimension,
				demo_description = excluded.demo_description`,
			d.Code, d.Dimension, d.Label)
		if err != nil {
			return errors.Wrapf(err, "seed demographic %s", d.Code)
		}
	}
	return nil
}

// ResolveDemographic returns the demo_id for a value code, or an error
// wrapping errors.ErrNotFound for codes that were never seeded.
func (s *Store) ResolveDemographic(ctx context.Context, code string) (int64, error) {
	if id, ok := s.demoIDs[code]; ok {
		return id, nil
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT demo_id FROM demographics WHERE demo_code = ?", code).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.Wrapf(errors.ErrNotFound, "demographic %s", code)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "lookup demographic %s", code)
	}
	s.demoIDs[code] = id
	return id, nil
}

// EmitQuestion upserts a question on (survey_id, question_number,
// question_part) and returns its id. The text follows the latest emission;
// an existing base description is kept when the re-emission has none.
func (s *Store) EmitQuestion(ctx context.Context, q *extract.Question) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO questions
			(survey_id, question_number, question_part, question_text, is_demographic, base_description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(survey_id, question_number, question_part) DO UPDATE SET
			question_text = excluded.question_text,
			is_demographic = excluded.is_demographic,
			base_description = COALESCE(excluded.base_description, questions.base_description)
		RETURNING question_id`,
		q.SurveyID, q.Number, q.Part, q.Text, q.IsDemographic, nullString(q.BaseDescription),
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert question %s part %d", q.Number, q.Part)
	}
	return id, nil
}

// EmitAnswerOption returns the existing option for (question_id, option_text)
// or inserts it with the supplied order. The original order is kept on
// re-runs so option ordering stays stable.
func (s *Store) EmitAnswerOption(ctx context.Context, o *extract.AnswerOption) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT option_id FROM answer_options WHERE question_id = ? AND option_text = ?",
		o.QuestionID, o.Text).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errors.Wrapf(err, "lookup option %q", o.Text)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO answer_options (question_id, option_text, option_order)
		VALUES (?, ?, ?)
		RETURNING option_id`,
		o.QuestionID, o.Text, o.Order).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "insert option %q", o.Text)
	}
	return id, nil
}

// EmitResponseFact upserts one observation on its natural key
// (question_id, option_id, item_label).
func (s *Store) EmitResponseFact(ctx context.Context, f *extract.ResponseFact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO response_facts
			(question_id, survey_id, option_id, demo_id, item_label, cnt, pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_id, option_id, item_label) DO UPDATE SET
			cnt = excluded.cnt,
			pct = excluded.pct`,
		f.QuestionID, f.SurveyID, f.OptionID, nullInt(f.DemoID), f.ItemLabel,
		nullFloat(f.Count), nullFloat(f.Percent))
	if err != nil {
		return errors.Wrapf(err, "upsert fact %s/%s", f.ItemLabel, f.SurveyID)
	}
	return nil
}

// UpsertSurvey records one polling wave.
func (s *Store) UpsertSurvey(ctx context.Context, surveyID string, month, year int, filename string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO surveys (survey_id, month, year, filename)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(survey_id) DO UPDATE SET filename = excluded.filename`,
		surveyID, month, year, filename)
	if err != nil {
		return errors.Wrapf(err, "upsert survey %s", surveyID)
	}
	return nil
}

// IsFileProcessed reports whether the filename was fully ingested before.
func (s *Store) IsFileProcessed(ctx context.Context, filename string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_files WHERE filename = ?", filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "check processed %s", filename)
	}
	return true, nil
}

// MarkFileProcessed records a completed ingestion.
func (s *Store) MarkFileProcessed(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_files (filename) VALUES (?) ON CONFLICT(filename) DO NOTHING",
		filename)
	if err != nil {
		return errors.Wrapf(err, "mark processed %s", filename)
	}
	return nil
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullFloat maps nil, NaN and Inf to NULL; counts and percentages are either
// real observations or absent.
func nullFloat(v *float64) interface{} {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return *v
}
