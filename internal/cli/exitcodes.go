package cli

import (
	"errors"

	"github.com/yaklabco/pysqlfmt/internal/configloader"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

// Exit codes for pysqlfmt.
const (
	// ExitSuccess indicates every file is formatted.
	ExitSuccess = 0

	// ExitUnformatted indicates --check found files that would change, or
	// some files could not be formatted.
	ExitUnformatted = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code of a completed run.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasErrors() {
		return ExitUnformatted
	}
	if check && result.HasChanges() {
		return ExitUnformatted
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUnformatted), errors.Is(err, ErrFormatFailed):
		return ExitUnformatted
	case errors.As(err, &validation), errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, errUsage):
		return ExitInvalidUsage
	case errors.Is(err, runner.ErrWriteFailure), errors.Is(err, runner.ErrPermissionDenied):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// Reported reports whether err was already shown to the user by a
// reporter and needs no further logging.
func Reported(err error) bool {
	return errors.Is(err, ErrUnformatted) || errors.Is(err, ErrFormatFailed)
}
