package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/extract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestOpenRunsMigrations(t *testing.T) {
	s := openTestStore(t)

	var applied int
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = '001'").Scan(&applied))
	assert.Equal(t, 1, applied)

	// Re-opening the same file is a no-op.
	path := filepath.Join(t.TempDir(), "reopen.db")
	for i := 0; i < 2; i++ {
		s2, err := Open(path, zap.NewNop().Sugar())
		require.NoError(t, err)
		require.NoError(t, s2.Close())
	}
}

func TestMigrateLedger(t *testing.T) {
	s := openTestStore(t)

	// Every embedded step is recorded, the ledger-creating one included.
	steps, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.Equal(t, len(steps), countRows(t, s.DB(), "schema_migrations"))

	done, err := appliedVersions(s.DB())
	require.NoError(t, err)
	for _, m := range steps {
		assert.True(t, done[m.version], m.name)
	}

	// Running Migrate over an up-to-date database changes nothing.
	require.NoError(t, Migrate(s.DB(), zap.NewNop().Sugar()))
	assert.Equal(t, len(steps), countRows(t, s.DB(), "schema_migrations"))
}

func TestLoadMigrationsOrdered(t *testing.T) {
	steps, err := loadMigrations()
	require.NoError(t, err)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1].version, steps[i].version)
	}
}

func TestSeedAndResolveDemographics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDemographics(ctx, demomap.New().Descriptors()))

	id, err := s.ResolveDemographic(ctx, "gender_male")
	require.NoError(t, err)
	assert.Positive(t, id)

	// Cached lookup returns the same id.
	again, err := s.ResolveDemographic(ctx, "gender_male")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Re-seeding keeps the row count stable.
	require.NoError(t, s.SeedDemographics(ctx, demomap.New().Descriptors()))
	assert.Equal(t, len(demomap.New().Descriptors()), countRows(t, s.DB(), "demographics"))

	_, err = s.ResolveDemographic(ctx, "no_such_code")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestEmitQuestionUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSurvey(ctx, "AA-042024", 4, 2024, "AA_Apr24.xlsx"))

	q := &extract.Question{
		SurveyID:        "AA-042024",
		Number:          "Q1",
		Part:            1,
		Text:            "Do you approve of the Government's record?",
		BaseDescription: "All respondents",
	}
	id1, err := s.EmitQuestion(ctx, q)
	require.NoError(t, err)

	// Re-emission without a base keeps the stored base description.
	q2 := &extract.Question{SurveyID: "AA-042024", Number: "Q1", Part: 1, Text: "Do you approve of the Government's record?"}
	id2, err := s.EmitQuestion(ctx, q2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, countRows(t, s.DB(), "questions"))

	var base string
	require.NoError(t, s.DB().QueryRow(
		"SELECT base_description FROM questions WHERE question_id = ?", id1).Scan(&base))
	assert.Equal(t, "All respondents", base)

	// A different part is a distinct row.
	q3 := &extract.Question{SurveyID: "AA-042024", Number: "Q1", Part: 2, Text: "Variant"}
	id3, err := s.EmitQuestion(ctx, q3)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
	assert.Equal(t, 2, countRows(t, s.DB(), "questions"))
}

func TestEmitAnswerOptionKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSurvey(ctx, "AA-042024", 4, 2024, ""))
	qid, err := s.EmitQuestion(ctx, &extract.Question{SurveyID: "AA-042024", Number: "Q1", Part: 1, Text: "Q"})
	require.NoError(t, err)

	id1, err := s.EmitAnswerOption(ctx, &extract.AnswerOption{QuestionID: qid, Text: "Approve", Order: 1})
	require.NoError(t, err)

	// Re-emission with a later order returns the same row unchanged.
	id2, err := s.EmitAnswerOption(ctx, &extract.AnswerOption{QuestionID: qid, Text: "Approve", Order: 7})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	var order int
	require.NoError(t, s.DB().QueryRow(
		"SELECT option_order FROM answer_options WHERE option_id = ?", id1).Scan(&order))
	assert.Equal(t, 1, order)
}

func TestEmitResponseFactIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSurvey(ctx, "AA-042024", 4, 2024, ""))
	require.NoError(t, s.SeedDemographics(ctx, demomap.New().Descriptors()))
	qid, err := s.EmitQuestion(ctx, &extract.Question{SurveyID: "AA-042024", Number: "Q1", Part: 1, Text: "Q"})
	require.NoError(t, err)
	oid, err := s.EmitAnswerOption(ctx, &extract.AnswerOption{QuestionID: qid, Text: "Approve", Order: 1})
	require.NoError(t, err)
	demoID, err := s.ResolveDemographic(ctx, "gender_male")
	require.NoError(t, err)

	cnt, pct := 412.0, 41.27
	fact := &extract.ResponseFact{
		SurveyID:   "AA-042024",
		QuestionID: qid,
		OptionID:   oid,
		DemoID:     &demoID,
		ItemLabel:  "Male",
		Count:      &cnt,
		Percent:    &pct,
	}
	require.NoError(t, s.EmitResponseFact(ctx, fact))

	// Same key with revised values updates in place.
	cnt2 := 415.0
	fact.Count = &cnt2
	require.NoError(t, s.EmitResponseFact(ctx, fact))
	assert.Equal(t, 1, countRows(t, s.DB(), "response_facts"))

	var stored float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT cnt FROM response_facts WHERE question_id = ?", qid).Scan(&stored))
	assert.Equal(t, 415.0, stored)

	// Blank cells persist as NULL, not zero.
	blank := &extract.ResponseFact{
		SurveyID:   "AA-042024",
		QuestionID: qid,
		OptionID:   oid,
		ItemLabel:  "Total",
	}
	require.NoError(t, s.EmitResponseFact(ctx, blank))

	var nullCnt, nullPct sql.NullFloat64
	require.NoError(t, s.DB().QueryRow(
		"SELECT cnt, pct FROM response_facts WHERE item_label = 'Total'").Scan(&nullCnt, &nullPct))
	assert.False(t, nullCnt.Valid)
	assert.False(t, nullPct.Valid)
}

func TestProcessedFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done, err := s.IsFileProcessed(ctx, "AA_Apr24.xlsx")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkFileProcessed(ctx, "AA_Apr24.xlsx"))
	require.NoError(t, s.MarkFileProcessed(ctx, "AA_Apr24.xlsx"))

	done, err = s.IsFileProcessed(ctx, "AA_Apr24.xlsx")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, countRows(t, s.DB(), "processed_files"))
}

func TestResolveDemographicQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT demo_id FROM demographics").
		WillReturnError(sql.ErrConnDone)

	s := New(db, zap.NewNop().Sugar())
	_, err = s.ResolveDemographic(context.Background(), "gender_male")
	require.Error(t, err)
	assert.False(t, errors.IsNotFoundError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
