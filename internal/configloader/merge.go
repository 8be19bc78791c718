package configloader

import (
	"slices"

	"github.com/yaklabco/pysqlfmt/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
//   - Scalars: override wins when non-zero
//   - Booleans: override can only switch a flag on
//   - Slices: override replaces base entirely when non-nil
//
// Config files do not go through merge; they are decoded on top of the
// lower layers. merge serves flag-derived overrides where unset and false
// cannot be told apart.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Python.Engine != "" {
		result.Python.Engine = override.Python.Engine
	}
	if override.Python.Style != "" {
		result.Python.Style = override.Python.Style
	}
	if override.Python.Command != "" {
		result.Python.Command = override.Python.Command
	}
	if override.SQL.Style != nil {
		result.SQL.Style = override.SQL.Style
	}
	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.Markdown.Enabled {
		result.Markdown.Enabled = true
	}
	if override.Markdown.DetectUnlabeled {
		result.Markdown.DetectUnlabeled = true
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}
	if override.InPlace {
		result.InPlace = true
	}
	if override.Check {
		result.Check = true
	}
	if override.Diff {
		result.Diff = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.QueryNames != nil {
		result.QueryNames = slices.Clone(override.QueryNames)
	}
	if override.Callees != nil {
		result.Callees = slices.Clone(override.Callees)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}

	return result
}
