package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is "yaml" (default) or "json".
	Format string
}

const yamlTemplate = `# pysqlfmt configuration
# Formats SQL queries embedded in Python sources.

# Python code formatter.
python:
  # Engine: builtin, yapf or none
  engine: builtin
  # Style: pep8, google, facebook, yapf, or a yapf style file (yapf engine only)
  style: pep8
  # yapf executable used by the yapf engine
  # command: yapf

# SQL query formatter.
# sql:
#   # Either a path to a YAML/JSON style file...
#   style: sql-style.yaml
#   # ...or an inline mapping:
#   style:
#     indent: "    "
#     keywordCase: upper      # upper, lower or preserve
#     linesBetweenQueries: 1

# Variables whose names contain any of these substrings hold queries.
query_names:
  - query

# Calls whose first argument is a query.
callees:
  - spark.sql

# Python code blocks in Markdown files.
markdown:
  enabled: false
  flavor: gfm
  # Also format unlabeled fences that look like Python
  detect_unlabeled: false

# File patterns to ignore (glob patterns)
# ignore:
#   - "venv/**"
#   - "build/**"

# Backups written before in-place changes
backups:
  enabled: true
  mode: sidecar
`

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		data, err := json.MarshalIndent(NewConfig(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	}
	return []byte(yamlTemplate), nil
}

// DefaultTemplateHeader returns the header comment for generated configs.
func DefaultTemplateHeader() string {
	return "# pysqlfmt configuration"
}
