package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/config"
)

// envVarPrefix is the prefix for all pysqlfmt environment variables.
const envVarPrefix = "PYSQLFMT_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping binds an environment variable to a config field.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"PYTHON_ENGINE":   {"python.engine", envTypeString, "Python formatter engine: builtin, yapf or none"},
	"PYTHON_STYLE":    {"python.style", envTypeString, "Python style name or yapf style file"},
	"PYTHON_COMMAND":  {"python.command", envTypeString, "yapf executable"},
	"SQL_STYLE":       {"sql.style", envTypeString, "SQL style file or inline {...} mapping"},
	"QUERY_NAMES":     {"query_names", envTypeSlice, "Comma-separated query variable name substrings"},
	"CALLEES":         {"callees", envTypeSlice, "Comma-separated query call names"},
	"MARKDOWN":        {"markdown.enabled", envTypeBool, "Format Python blocks in Markdown: true or false"},
	"MARKDOWN_FLAVOR": {"markdown.flavor", envTypeString, "Markdown flavor: commonmark or gfm"},
	"JOBS":            {"jobs", envTypeInt, "Number of parallel workers (0 = auto)"},
	"FORMAT":          {"format", envTypeString, "Report format: text, json or diff"},
	"BACKUPS_ENABLED": {"backups.enabled", envTypeBool, "Enable backups for in-place writes: true or false"},
	"BACKUPS_MODE":    {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"IGNORE":          {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
	"NO_BACKUPS":      {"no_backups", envTypeBool, "Disable backups: true or false"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with PYSQLFMT_ (e.g., PYSQLFMT_CALLEES).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range envSuffixes() {
		envVar := envVarPrefix + suffix
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}
		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}
	return nil
}

func envSuffixes() []string {
	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue splits a comma-separated value, trimming each element
// and dropping empty ones.
func parseSliceValue(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "python.engine":
		cfg.Python.Engine = value
	case "python.style":
		cfg.Python.Style = value
	case "python.command":
		cfg.Python.Command = value
	case "sql.style":
		cfg.SQL.Style = value
	case "markdown.flavor":
		cfg.Markdown.Flavor = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "backups.mode":
		cfg.Backups.Mode = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "markdown.enabled":
		cfg.Markdown.Enabled = value
	case "backups.enabled":
		cfg.Backups.Enabled = value
	case "no_backups":
		cfg.NoBackups = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "query_names":
		cfg.QueryNames = value
	case "callees":
		cfg.Callees = value
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
