// Package config defines the configuration types for pysqlfmt.
// These types are pure data structures; discovery, merging and validation
// live in internal/configloader.
package config

// OutputFormat specifies how run results are reported.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// Python formatter engines.
const (
	EngineBuiltin = "builtin"
	EngineYapf    = "yapf"
	EngineNone    = "none"
)

// Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// PythonConfig configures the Python code formatter.
type PythonConfig struct {
	// Engine is builtin, yapf or none.
	Engine string `yaml:"engine,omitempty" json:"engine,omitempty"`

	// Style is pep8, google, facebook, yapf or a yapf style file path.
	Style string `yaml:"style,omitempty" json:"style,omitempty"`

	// Command is the yapf executable.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
}

// SQLConfig configures the SQL query formatter.
type SQLConfig struct {
	// Style is a style file path, an inline "{...}" mapping, or a mapping
	// with indent, keywordCase and linesBetweenQueries keys.
	Style any `yaml:"style,omitempty" json:"style,omitempty"`
}

// MarkdownConfig controls formatting of Python blocks in Markdown files.
type MarkdownConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	Flavor          string `yaml:"flavor,omitempty" json:"flavor,omitempty"`
	DetectUnlabeled bool   `yaml:"detect_unlabeled" json:"detect_unlabeled"`
}

// BackupsConfig controls backup behavior for in-place writes.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Mode    string `yaml:"mode" json:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure.
type Config struct {
	Python PythonConfig `yaml:"python" json:"python"`
	SQL    SQLConfig    `yaml:"sql" json:"sql"`

	// QueryNames are case-insensitive substrings marking query variables.
	QueryNames []string `yaml:"query_names,omitempty" json:"query_names,omitempty"`

	// Callees are dotted call names whose first argument holds a query.
	Callees []string `yaml:"callees,omitempty" json:"callees,omitempty"`

	Markdown MarkdownConfig `yaml:"markdown" json:"markdown"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	Backups BackupsConfig `yaml:"backups" json:"backups"`

	// CLI-level options (not persisted to config files).

	// InPlace rewrites files instead of printing them.
	InPlace bool `yaml:"-" json:"-"`

	// Check reports files that would change without writing them.
	Check bool `yaml:"-" json:"-"`

	// Diff prints a unified diff instead of writing files.
	Diff bool `yaml:"-" json:"-"`

	// Format specifies the report format.
	Format OutputFormat `yaml:"-" json:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-" json:"-"`

	// NoBackups disables backup creation for in-place writes.
	NoBackups bool `yaml:"-" json:"-"`
}

// DefaultQueryNames returns the default query variable name substrings.
func DefaultQueryNames() []string {
	return []string{"query"}
}

// DefaultCallees returns the default query call sites.
func DefaultCallees() []string {
	return []string{"spark.sql"}
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Python: PythonConfig{
			Engine:  EngineBuiltin,
			Style:   "pep8",
			Command: "yapf",
		},
		QueryNames: DefaultQueryNames(),
		Callees:    DefaultCallees(),
		Markdown: MarkdownConfig{
			Flavor: FlavorGFM,
		},
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means runtime.NumCPU
	}
}
