// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldEvent      = "event"

	// Configuration fields.
	FieldPythonStyle  = "python_style"
	FieldPythonEngine = "python_engine"
	FieldSQLStyle     = "sql_style"
	FieldQueryNames   = "query_names"
	FieldCallees      = "callees"
	FieldInPlace      = "in_place"
	FieldCheck        = "check"
	FieldJobs         = "jobs"

	// Formatting fields.
	FieldQueries = "queries"
	FieldLine    = "line"
	FieldKind    = "kind"
	FieldBlocks  = "blocks"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesChanged    = "files_changed"
	FieldFilesWritten    = "files_written"
	FieldFilesErrored    = "files_errored"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
