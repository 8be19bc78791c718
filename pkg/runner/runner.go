package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/formatter"
)

// Runner formats discovered files with a Pipeline.
type Runner struct {
	// Pipeline handles per-file processing: read, format, diff, backup and
	// write. It is shared by all workers.
	Pipeline *Pipeline
}

// New creates a Runner with the given pipeline.
func New(pipeline *Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// NewFromOptions builds the formatter described by opts.Config and wraps it
// in a Runner.
func NewFromOptions(opts Options) (*Runner, error) {
	f, err := formatter.New(FormatterOptionsFromConfig(opts.Config))
	if err != nil {
		return nil, err
	}
	return New(NewPipeline(f)), nil
}

// Run discovers files under opts.Paths and processes them on a pool of
// opts.Jobs workers. Outcomes are ordered by path regardless of completion
// order. A cancelled context stops feeding work and returns the outcomes
// collected so far with the context error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts)
}

// RunFiles processes an explicit list of files without discovery. Watch
// mode uses it to reformat only the files that changed.
//
// The run:
//   - starts min(opts.Jobs, len(files)) workers
//   - feeds paths until the list is exhausted or ctx is cancelled
//   - collects outcomes and re-orders them to match files
//   - folds each outcome into the aggregate Stats
func (r *Runner) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	logger.Debug("discovered files", logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		return result, nil
	}

	// Never start more workers than there are files.
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	// The run mode comes from opts, not from the config: the CLI promotes
	// print to write in watch mode.
	pipelineOpts := PipelineOptionsFromConfig(opts.Config)
	pipelineOpts.Mode = opts.Mode

	// Unbuffered channels: a worker blocks until the collector takes its
	// outcome, which bounds memory to one outcome per worker.

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, pipelineOpts)
		}()
	}

	// Feed work in a separate goroutine so the collector below can drain
	// outCh concurrently.
	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	// Close outCh once every worker has returned.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Collect in completion order, then emit in input order.

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	// Files skipped by cancellation have no outcome and are left out.
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	logger.Debug("run complete",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
	)

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

// worker formats paths from workCh until it is closed or ctx is cancelled.
// A failing file is recorded in its outcome; it never stops the worker.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	opts PipelineOptions,
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := FileOutcome{Path: path}
		fr, err := r.Pipeline.ProcessFile(ctx, path, opts)
		if err != nil {
			outcome.Error = err
			logging.FromContext(ctx).Debug("format failed",
				logging.FieldPath, path,
				logging.FieldError, err,
			)
		} else {
			outcome.Result = fr
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
