package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/pysqlfmt/internal/configloader"
	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/config"
	"github.com/yaklabco/pysqlfmt/pkg/reporter"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

var (
	// ErrUnformatted is returned by --check when some file would change.
	ErrUnformatted = errors.New("some files would be reformatted")

	// ErrFormatFailed is returned when some file could not be formatted.
	ErrFormatFailed = errors.New("some files could not be formatted")

	errConfig = errors.New("invalid configuration")
	errUsage  = errors.New("invalid usage")
)

// stdinPath labels content read from standard input.
const stdinPath = "<stdin>"

type formatFlags struct {
	files    []string
	sqlStyle string
	scripts  bool
	watch    bool
	verbose  bool
	compact  bool
	format   string
}

func newFormatCommand() *cobra.Command {
	var cfg config.Config
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:     "format [paths...]",
		Aliases: []string{"fmt"},
		Short:   "Format Python files and the SQL queries they embed",
		Long:    formatLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, &cfg, flags)
		},
	}

	addFormatFlags(cmd, &cfg, flags)

	return cmd
}

const formatLongDescription = `Format Python files and the SQL queries embedded in them.

Paths may be files or directories; directories are searched for .py files
(and Markdown files with --markdown). Without paths the current directory is
formatted, unless input is piped, in which case standard input is formatted
to standard output.

By default the formatted source is printed. Use --in-place to rewrite files,
--check to fail when a file would change and --diff to preview changes.

Examples:
  pysqlfmt format jobs/                  # Print formatted sources
  pysqlfmt format -i jobs/               # Rewrite files in place
  pysqlfmt format --check .              # Exit 1 if anything would change
  pysqlfmt format --diff etl.py          # Show a unified diff
  pysqlfmt format --sql-style '{keywordCase: lower}' etl.py
  cat etl.py | pysqlfmt format           # Filter standard input
  pysqlfmt format -i --watch src/        # Reformat on every save`

func addFormatFlags(cmd *cobra.Command, cfg *config.Config, flags *formatFlags) {
	cmd.Flags().StringSliceVarP(&flags.files, "files", "f", nil, "files to format, in addition to positional paths")
	cmd.Flags().BoolVarP(&cfg.InPlace, "in-place", "i", false, "rewrite files in place")
	cmd.Flags().StringVar(&cfg.Python.Style, "python-style", "",
		"Python style: pep8, google, facebook, yapf or a yapf style file")
	cmd.Flags().StringVar(&cfg.Python.Engine, "python-engine", "",
		"Python formatter: builtin, yapf, none")
	cmd.Flags().StringVar(&cfg.Python.Command, "python-command", "", "yapf executable for --python-engine yapf")
	cmd.Flags().StringVar(&flags.sqlStyle, "sql-style", "",
		"SQL style as an inline object such as '{keywordCase: lower}' or a YAML/JSON file")
	cmd.Flags().StringSliceVar(&cfg.QueryNames, "query-names", nil,
		"substrings marking query variables (default query)")
	cmd.Flags().StringSliceVar(&cfg.Callees, "callees", nil,
		"calls whose first argument is a query (default spark.sql)")
	cmd.Flags().BoolVar(&cfg.Check, "check", false, "exit with status 1 if any file would be reformatted")
	cmd.Flags().BoolVar(&cfg.Diff, "diff", false, "print a unified diff instead of the formatted source")
	cmd.Flags().StringVar(&flags.format, "output-format", "", "report format: text, json, diff")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&cfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&cfg.Markdown.Enabled, "markdown", false, "also format Python code blocks in Markdown files")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "do not keep backups of rewritten files")
	cmd.Flags().BoolVar(&flags.scripts, "scripts", false, "also format extensionless files with a Python shebang")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "keep running and reformat files when they change")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "also list files that are already formatted")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "minify JSON output")
}

func runFormat(cmd *cobra.Command, args []string, overrides *config.Config, flags *formatFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flags.sqlStyle != "" {
		overrides.SQL.Style = flags.sqlStyle
	}
	if flags.format != "" {
		format, err := reporter.ParseFormat(flags.format)
		if err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		overrides.Format = config.OutputFormat(format)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	cfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	logger.Debug("configuration loaded",
		logging.FieldFiles, loadResult.LoadedFrom,
		logging.FieldPythonEngine, cfg.Python.Engine,
		logging.FieldPythonStyle, cfg.Python.Style,
		logging.FieldQueryNames, cfg.QueryNames,
		logging.FieldCallees, cfg.Callees,
		logging.FieldInPlace, cfg.InPlace,
		logging.FieldCheck, cfg.Check,
		logging.FieldJobs, cfg.Jobs,
	)

	paths := append(append([]string{}, args...), flags.files...)
	mode := runner.ModeFromConfig(cfg)
	if flags.watch && mode == runner.ModePrint {
		mode = runner.ModeWrite
	}

	runOpts := runner.Options{
		Paths:         paths,
		WorkingDir:    workDir,
		ExcludeGlobs:  cfg.Ignore,
		DetectScripts: flags.scripts,
		Jobs:          cfg.Jobs,
		Mode:          mode,
		Config:        cfg,
	}

	fmtRunner, err := runner.NewFromOptions(runOpts)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format := reporter.Format(cfg.Format)
	if mode == runner.ModeDiff && format == reporter.FormatText {
		format = reporter.FormatDiff
	}

	stdin := len(paths) == 0 && isPiped(cmd.InOrStdin())
	repOpts := reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Mode:        mode,
		Color:       colorMode,
		ShowSummary: !stdin,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	}
	rep, err := reporter.New(repOpts)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	switch {
	case stdin:
		if flags.watch {
			return fmt.Errorf("%w: --watch needs paths", errUsage)
		}
		return formatStdin(ctx, cmd.InOrStdin(), fmtRunner, cfg, mode, rep)
	case flags.watch:
		return watch(ctx, fmtRunner, runOpts, rep)
	}

	logger.Debug("starting run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := fmtRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("format run failed"), err)
	}
	return report(ctx, rep, result, mode)
}

// formatStdin formats standard input as a single Python document. In-place
// mode has no file to write and prints instead.
func formatStdin(
	ctx context.Context,
	in io.Reader,
	r *runner.Runner,
	cfg *config.Config,
	mode runner.Mode,
	rep reporter.Reporter,
) error {
	content, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	opts := runner.PipelineOptionsFromConfig(cfg)
	opts.Mode = mode
	if mode == runner.ModeWrite {
		opts.Mode = runner.ModePrint
	}

	outcome := runner.FileOutcome{Path: stdinPath}
	outcome.Result, outcome.Error = r.Pipeline.ProcessContent(ctx, stdinPath, content, opts)
	return report(ctx, rep, runner.NewResult(outcome), opts.Mode)
}

func watch(ctx context.Context, r *runner.Runner, opts runner.Options, rep reporter.Reporter) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	result, err := r.Run(ctx, opts)
	if err != nil {
		return errors.Join(errors.New("format run failed"), err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	return r.Watch(ctx, opts, func(result *runner.Result) {
		if _, err := rep.Report(ctx, result); err != nil {
			logging.FromContext(ctx).Error("report failed", logging.FieldError, err)
		}
	})
}

func report(ctx context.Context, rep reporter.Reporter, result *runner.Result, mode runner.Mode) error {
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	switch {
	case result.HasErrors():
		return ErrFormatFailed
	case ExitCodeFromResult(result, mode == runner.ModeCheck) != ExitSuccess:
		return ErrUnformatted
	default:
		return nil
	}
}

// isPiped reports whether r is a pipe or regular file rather than a
// terminal or character device.
func isPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	if term.IsTerminal(int(f.Fd())) {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
