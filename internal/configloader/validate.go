package configloader

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yaklabco/pysqlfmt/pkg/config"
	"github.com/yaklabco/pysqlfmt/pkg/pyfmt"
	"github.com/yaklabco/pysqlfmt/pkg/sqlfmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "python.engine").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown fields).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownEngines = map[string]bool{
	config.EngineBuiltin: true,
	config.EngineYapf:    true,
	config.EngineNone:    true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[string]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText: true,
	config.FormatJSON: true,
	config.FormatDiff: true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}
	fail := func(field string, value any, format string, args ...any) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf(format, args...),
		})
	}

	validatePython(cfg, fail)
	validateSQLStyle(cfg, fail)

	if cfg.Markdown.Flavor != "" && !knownFlavors[cfg.Markdown.Flavor] {
		fail("markdown.flavor", cfg.Markdown.Flavor,
			"invalid flavor %q; must be one of: commonmark, gfm", cfg.Markdown.Flavor)
	}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		fail("format", cfg.Format, "invalid format %q; must be one of: text, json, diff", cfg.Format)
	}

	if cfg.Jobs < 0 {
		fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		fail("backups.mode", cfg.Backups.Mode,
			"invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	if cfg.Check && cfg.InPlace {
		fail("check", true, "--check cannot be combined with --in-place")
	}

	for i, name := range cfg.QueryNames {
		if strings.TrimSpace(name) == "" {
			fail(fmt.Sprintf("query_names[%d]", i), name, "query name must not be empty")
		}
	}
	if len(cfg.QueryNames) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "query_names",
			Message: "no query names configured; variables will never be treated as queries",
		})
	}

	for i, callee := range cfg.Callees {
		if !isDottedName(callee) {
			fail(fmt.Sprintf("callees[%d]", i), callee,
				"invalid callee %q; must be a dotted name such as spark.sql", callee)
		}
	}

	validateIgnorePatterns(cfg, result)

	return result
}

func validatePython(cfg *config.Config, fail func(string, any, string, ...any)) {
	engine := cfg.Python.Engine
	if engine != "" && !knownEngines[engine] {
		fail("python.engine", engine, "invalid engine %q; must be one of: builtin, yapf, none", engine)
		return
	}
	if (engine == "" || engine == config.EngineBuiltin) && cfg.Python.Style != "" &&
		!pyfmt.IsNamedStyle(cfg.Python.Style) {
		fail("python.style", cfg.Python.Style,
			"style %q is not a named style; style files require the yapf engine", cfg.Python.Style)
	}
}

// validateSQLStyle resolves inline styles. Style file paths are read when
// the formatter is built.
func validateSQLStyle(cfg *config.Config, fail func(string, any, string, ...any)) {
	if path, ok := cfg.SQL.Style.(string); ok && !strings.HasPrefix(strings.TrimSpace(path), "{") {
		return
	}
	if _, err := sqlfmt.ResolveStyle(cfg.SQL.Style); err != nil {
		fail("sql.style", cfg.SQL.Style, "%v", err)
	}
}

// isDottedName reports whether s is a sequence of Python identifiers
// joined by dots.
func isDottedName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
				continue
			}
			return false
		}
	}
	return true
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		_, err := filepath.Match(pattern, "")
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("ignore[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
}
