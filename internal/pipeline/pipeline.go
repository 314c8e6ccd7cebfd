// Package pipeline runs one batch end to end: open a fresh staging store,
// normalize every record into it, export the two result sets, close the
// store. Batches are fully isolated from one another; a batch failure is
// reported, never propagated to siblings.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivam221098/bigquery/internal/normalize"
	"github.com/shivam221098/bigquery/internal/pubmed"
	"github.com/shivam221098/bigquery/internal/sink"
	"github.com/shivam221098/bigquery/internal/staging"
)

// State tracks a pipeline's progress through its batch.
type State int

const (
	StateOpened State = iota
	StateNormalized
	StateExported
	StateClosed
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOpened:
		return "opened"
	case StateNormalized:
		return "normalized"
	case StateExported:
		return "exported"
	case StateClosed:
		return "closed"
	default:
		return "failed"
	}
}

// Batch is one input file's work: its parsed citations plus where and how
// to stage them.
type Batch struct {
	FileName  string // source file name, e.g. "pubmed25n0001.xml"
	Stem      string // file name with the .xml suffix removed
	Citations []pubmed.Citation
	StoreMode staging.Mode
	StorePath string // backing file for ModeFile, unique per batch
}

// Options carries the destination configuration shared by all batches.
type Options struct {
	OutDir      string
	ToWarehouse bool
	Uploader    sink.Uploader // required when ToWarehouse
	FixedTable  string        // non-empty forces append into one table
	UploadType  string        // "append" or "replace"
	Log         zerolog.Logger
}

// Result is the per-batch summary handed back to the caller for logging.
type Result struct {
	XMLFileName    string
	ConversionType string // "csv" or "BigQuery"
	TaskType       string // staging choice: "memory" or "disk"
	OutputName     string // derived "<stem>_mesh <stem>" pair
	ElapsedSecs    float64
	UploadSecs     float64
	RunDate        time.Time
	Failed         bool
	Staged         int
	Skipped        int
}

// Pipeline processes a single batch.
type Pipeline struct {
	batch Batch
	opts  Options
	state State
}

// New builds a pipeline for one batch.
func New(batch Batch, opts Options) *Pipeline {
	return &Pipeline{batch: batch, opts: opts}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes the batch. Any error short of record-level malformation
// marks the batch failed with a zero upload duration; the staging store is
// closed either way.
func (p *Pipeline) Run(ctx context.Context) Result {
	start := time.Now()

	res := Result{
		XMLFileName:    p.batch.FileName,
		ConversionType: "csv",
		TaskType:       p.batch.StoreMode.String(),
		OutputName:     p.batch.Stem + "_mesh " + p.batch.Stem,
		RunDate:        time.Now(),
	}
	if p.opts.ToWarehouse {
		res.ConversionType = "BigQuery"
	}

	if err := p.run(ctx, &res); err != nil {
		p.state = StateFailed
		p.opts.Log.Error().
			Err(err).
			Str("file", p.batch.FileName).
			Str("state", p.state.String()).
			Msg("batch failed")
		res.Failed = true
		res.UploadSecs = 0
	}

	res.ElapsedSecs = time.Since(start).Seconds()
	return res
}

func (p *Pipeline) run(ctx context.Context, res *Result) error {
	st, err := staging.Open(p.batch.StoreMode, p.batch.StorePath)
	if err != nil {
		return err
	}
	// Closed is reached unconditionally, even when export fails.
	defer func() {
		st.Close()
		if p.state != StateFailed {
			p.state = StateClosed
		}
	}()

	if err := st.DefineSchema(); err != nil {
		return err
	}
	if err := st.Begin(); err != nil {
		return err
	}
	p.state = StateOpened

	norm := normalize.New(st, p.opts.Log)
	res.Staged, res.Skipped = norm.Run(p.batch.Citations)
	if err := st.Commit(); err != nil {
		return err
	}
	p.state = StateNormalized

	// The store is read sequentially here; the concurrent uploads below
	// only ever touch the materialized result sets.
	mesh, err := sink.BuildMeshSet(st, p.batch.FileName, p.batch.Stem)
	if err != nil {
		return err
	}
	full, err := sink.BuildFullSet(st, p.batch.FileName, p.batch.Stem)
	if err != nil {
		return err
	}

	if p.opts.ToWarehouse {
		dur, err := p.uploadBoth(ctx, mesh, full)
		if err != nil {
			return err
		}
		res.UploadSecs = dur.Seconds()
	} else {
		if _, err := sink.WriteCSV(mesh, p.opts.OutDir); err != nil {
			return err
		}
		if _, err := sink.WriteCSV(full, p.opts.OutDir); err != nil {
			return err
		}
	}
	p.state = StateExported

	return nil
}

// uploadBoth races the two uploads on their own goroutines and waits for
// both. The batch's upload duration is the longer of the two: the slower
// table bounds completion. If either upload fails the batch fails, and the
// sibling's duration is discarded.
func (p *Pipeline) uploadBoth(ctx context.Context, mesh, full *sink.ResultSet) (time.Duration, error) {
	type outcome struct {
		dur time.Duration
		err error
	}

	uploads := []struct {
		rs     *sink.ResultSet
		suffix string
	}{
		{mesh, "_mesh"},
		{full, ""},
	}

	ch := make(chan outcome, len(uploads))
	for _, u := range uploads {
		u := u
		go func() {
			table, replace := sink.Target(p.batch.Stem, u.suffix, p.opts.FixedTable, p.opts.UploadType)
			dur, err := p.opts.Uploader.Upload(ctx, u.rs, table, replace)
			if err != nil {
				err = fmt.Errorf("uploading %s: %w", table, err)
			}
			ch <- outcome{dur: dur, err: err}
		}()
	}

	var longest time.Duration
	var firstErr error
	for range uploads {
		o := <-ch
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
		if o.dur > longest {
			longest = o.dur
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return longest, nil
}
