package errors

import (
	"fmt"
	"io"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the
// fatal path of the CLI. Expected per-request errors never reach it: those are
// reported in-band on stdout.
type CLIErrorAdapter struct {
	verbose bool
	stderr  io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter. In verbose mode errors are
// printed with their full traceback.
func NewCLIErrorAdapter(verbose bool) *CLIErrorAdapter {
	return &CLIErrorAdapter{
		verbose: verbose,
		stderr:  os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		switch classified.Category() {
		case CategoryValidation:
			return 2 // Invalid request
		case CategoryProtocol:
			return 3 // Unreadable input or unwritable output
		case CategoryLoad:
			return 4
		case CategoryConfig:
			return 7
		case CategoryInternal:
			return 10
		case CategoryRuntime:
			return 12
		}
	}
	return 1
}

// FormatError formats an error for display on stderr.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return Traceback(err)
	}
	return fmt.Sprintf("Error: %s", classified.Error())
}

// WithOutput sets the writer errors are printed to.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.stderr = w
	return a
}

// Report prints the error once and returns the exit code it maps to. Logging the
// failure is left to the caller, so stderr carries a single record of it.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(a.stderr, a.FormatError(err))
	return a.ExitCodeFor(err)
}
