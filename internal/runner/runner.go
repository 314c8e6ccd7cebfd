// Package runner selects input batches and drives the per-batch pipeline
// across them, sequentially for in-memory staging or over a bounded worker
// pool for file-backed staging.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shivam221098/bigquery/internal/config"
	"github.com/shivam221098/bigquery/internal/pipeline"
	"github.com/shivam221098/bigquery/internal/pubmed"
	"github.com/shivam221098/bigquery/internal/sink"
	"github.com/shivam221098/bigquery/internal/staging"
)

// ArchiveDir is the subdirectory of the input directory that successfully
// processed files move into. Failed files stay in place for a later run.
const ArchiveDir = "converted_xml"

// Selection picks which input files a run processes.
type Selection struct {
	Name  string // a single file, by name
	Count int    // the first N files
	All   bool   // every .xml file in the input directory
}

// ParseSelection interprets the run command's positional argument: an .xml
// file name, a numeric count, or "all".
func ParseSelection(arg string) (Selection, error) {
	switch {
	case strings.HasSuffix(arg, ".xml"):
		return Selection{Name: arg}, nil
	case strings.EqualFold(arg, "all"):
		return Selection{All: true}, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return Selection{}, fmt.Errorf("argument must be an .xml file, a positive count, or \"all\", got %q", arg)
	}
	return Selection{Count: n}, nil
}

// Runner orchestrates batches for one run.
type Runner struct {
	cfg      *config.Config
	uploader sink.Uploader // nil for the csv destination
	workDir  string        // holds the per-batch staging database files
	log      zerolog.Logger
	mu       sync.Mutex // serializes Progress across pooled workers

	// Progress, if set, is called with each batch's result as it completes.
	// Calls are serialized, so the callback needs no locking of its own.
	Progress func(pipeline.Result)
}

// New builds a Runner. The uploader may be nil when the destination is csv.
func New(cfg *config.Config, uploader sink.Uploader, workDir string, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, uploader: uploader, workDir: workDir, log: log}
}

// Run processes the selected batches and returns their results. Pooled runs
// return results in completion order. The error covers run-level problems
// only (bad selection, unreadable input directory); per-batch failures are
// flagged on their results.
func (r *Runner) Run(ctx context.Context, sel Selection) ([]pipeline.Result, error) {
	files, err := r.selectFiles(sel)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if r.cfg.StagingMode() == staging.ModeMemory {
		return r.runSequential(ctx, files), nil
	}
	return r.runPooled(ctx, files)
}

// selectFiles lists the input directory and applies the selection.
func (r *Runner) selectFiles(sel Selection) ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".xml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	switch {
	case sel.Name != "":
		for _, f := range files {
			if f == sel.Name {
				return []string{f}, nil
			}
		}
		return nil, fmt.Errorf("file %s not found in %s", sel.Name, r.cfg.InDir)
	case sel.All:
		return files, nil
	case sel.Count > 0:
		if sel.Count < len(files) {
			files = files[:sel.Count]
		}
		return files, nil
	}
	return nil, fmt.Errorf("empty selection")
}

func (r *Runner) runSequential(ctx context.Context, files []string) []pipeline.Result {
	results := make([]pipeline.Result, 0, len(files))
	for _, f := range files {
		results = append(results, r.processOne(ctx, f))
	}
	return results
}

// runPooled fans batches out over a worker pool sized to the machine. Each
// batch stages into its own database file, so workers share no mutable
// state; submissions are paced by a rate limiter rather than a sleep.
func (r *Runner) runPooled(ctx context.Context, files []string) ([]pipeline.Result, error) {
	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	limiter := rate.NewLimiter(rate.Every(r.cfg.SubmitInterval()), 1)

	var wg sync.WaitGroup
	out := make(chan pipeline.Result, len(files))
	for _, f := range files {
		f := f
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting to submit %s: %w", f, err)
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			out <- r.processOne(ctx, f)
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submitting %s: %w", f, submitErr)
		}
	}

	wg.Wait()
	close(out)

	results := make([]pipeline.Result, 0, len(files))
	for res := range out {
		results = append(results, res)
	}
	return results, nil
}

// processOne runs a single batch from parse through archive.
func (r *Runner) processOne(ctx context.Context, fileName string) pipeline.Result {
	stem := strings.TrimSuffix(fileName, ".xml")

	batch := pipeline.Batch{
		FileName:  fileName,
		Stem:      stem,
		StoreMode: r.cfg.StagingMode(),
		StorePath: filepath.Join(r.workDir, fileName+".db"),
	}
	opts := pipeline.Options{
		OutDir:      r.cfg.OutDir,
		ToWarehouse: r.cfg.ToWarehouse(),
		Uploader:    r.uploader,
		FixedTable:  r.cfg.BQTableName,
		UploadType:  r.cfg.BQUploadType,
		Log:         r.log,
	}

	citations, err := pubmed.ParseFile(filepath.Join(r.cfg.InDir, fileName))
	if err != nil {
		r.log.Error().Err(err).Str("file", fileName).Msg("batch failed")
		res := pipeline.Result{
			XMLFileName:    fileName,
			ConversionType: config.DestCSV,
			TaskType:       batch.StoreMode.String(),
			OutputName:     stem + "_mesh " + stem,
			RunDate:        time.Now(),
			Failed:         true,
		}
		if opts.ToWarehouse {
			res.ConversionType = "BigQuery"
		}
		r.report(res)
		return res
	}
	batch.Citations = citations

	res := pipeline.New(batch, opts).Run(ctx)
	if !res.Failed {
		if err := r.archive(fileName); err != nil {
			r.log.Error().Err(err).Str("file", fileName).Msg("archiving source file")
		}
	}

	r.report(res)
	return res
}

// archive moves a processed source file into the archive subdirectory.
func (r *Runner) archive(fileName string) error {
	dir := filepath.Join(r.cfg.InDir, ArchiveDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	if err := os.Rename(filepath.Join(r.cfg.InDir, fileName), filepath.Join(dir, fileName)); err != nil {
		return fmt.Errorf("moving %s to archive: %w", fileName, err)
	}
	return nil
}

func (r *Runner) report(res pipeline.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Progress != nil {
		r.Progress(res)
	}
}
