package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
	"github.com/crosstab/crosstab/extract"
	"github.com/crosstab/crosstab/grid"
	"github.com/crosstab/crosstab/store"
)

// Runner ingests workbooks into the store.
type Runner struct {
	Store   *store.Store
	Mapper  *demomap.Mapper
	Sheet   string // tabulation sheet name, e.g. "P1"
	Workers int    // concurrent files; <1 means serial
	Log     *zap.SugaredLogger
}

// Report aggregates a run across files.
type Report struct {
	mu        sync.Mutex
	Processed int
	Skipped   int
	Failed    int
	Questions int
	Facts     int
}

func (r *Report) add(f func(*Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(r)
}

// RunDir ingests every workbook under dir whose name parses as a polling
// wave. Non-matching files are skipped with a warning.
func (r *Runner) RunDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".xlsx" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return r.RunFiles(ctx, paths)
}

// RunFiles ingests the given workbooks, at most Workers at a time. A failure
// in one file does not stop the others; the first error is returned alongside
// the report.
func (r *Runner) RunFiles(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	var firstErr error
	var errMu sync.Mutex

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := r.ingestFile(gctx, path, report); err != nil {
				// Per-file failures are recorded, not propagated, so one
				// bad workbook cannot cancel the rest of the batch.
				report.add(func(rep *Report) { rep.Failed++ })
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				if errors.IsFatalForFile(err) {
					// Structurally unusable workbook; the rest of the
					// batch is unaffected.
					r.Log.Warnw("Workbook unusable, skipping file",
						"path", path,
						"error", err,
					)
				} else {
					r.Log.Errorw("File ingestion failed",
						"path", path,
						"error", err,
					)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, firstErr
}

// ingestFile runs one workbook through extraction and persistence. The file
// is marked processed only after everything was written.
func (r *Runner) ingestFile(ctx context.Context, path string, report *Report) error {
	filename := filepath.Base(path)
	log := r.Log.With("file", filename)

	meta, err := ParseFilename(filename)
	if err != nil {
		report.add(func(rep *Report) { rep.Skipped++ })
		log.Warnw("Skipping file with unrecognized name", "error", err)
		return nil
	}

	done, err := r.Store.IsFileProcessed(ctx, filename)
	if err != nil {
		return err
	}
	if done {
		report.add(func(rep *Report) { rep.Skipped++ })
		log.Infow("Skipping already processed file")
		return nil
	}

	if err := r.Store.UpsertSurvey(ctx, meta.SurveyID, meta.Month, meta.Year, filename); err != nil {
		return err
	}

	sheet, err := grid.LoadXLSX(path, r.Sheet, log)
	if err != nil {
		return err
	}

	summary, err := extract.New(sheet, meta.SurveyID, r.Store, r.Mapper, log).Run(ctx)
	if err != nil {
		return err
	}

	if err := r.Store.MarkFileProcessed(ctx, filename); err != nil {
		return err
	}

	report.add(func(rep *Report) {
		rep.Processed++
		rep.Questions += summary.Questions
		rep.Facts += summary.Facts
	})
	log.Infow("File ingested",
		"survey", meta.SurveyID,
		"questions", summary.Questions,
		"options", summary.Options,
		"facts", summary.Facts,
		"diagnostics", len(summary.Diagnostics),
	)
	return nil
}
