package runner

// FileOutcome pairs a discovered path with its pipeline result.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Result is nil when Error is set.
	Result *FileResult

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int

	// FilesChanged counts files whose formatted content differs.
	FilesChanged int

	// FilesWritten counts files rewritten on disk.
	FilesWritten int

	// FilesSkipped counts files left alone because they changed on disk
	// while being formatted.
	FilesSkipped int

	FilesErrored int

	// Blocks counts formatted Markdown code blocks.
	Blocks int
}

// FilesUnchanged returns the number of processed files already formatted.
func (s Stats) FilesUnchanged() int {
	return s.FilesProcessed - s.FilesChanged
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats

	// Errors contains non-file-specific errors.
	Errors []error
}

// HasChanges reports whether any file would be or was reformatted.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && (r.Stats.FilesErrored > 0 || len(r.Errors) > 0)
}

// NewResult builds a Result from outcomes processed outside a run, such as
// content read from standard input.
func NewResult(outcomes ...FileOutcome) *Result {
	result := &Result{Files: make([]FileOutcome, 0, len(outcomes))}
	result.Stats.FilesDiscovered = len(outcomes)
	for _, outcome := range outcomes {
		result.accumulate(outcome)
	}
	return result
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Blocks += outcome.Result.Blocks
	if outcome.Result.Changed {
		r.Stats.FilesChanged++
	}
	if outcome.Result.Written {
		r.Stats.FilesWritten++
	}
	if outcome.Result.Skipped {
		r.Stats.FilesSkipped++
	}
}
