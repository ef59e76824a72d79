package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if se, ok := As(err); ok {
		return a.exitCodeFromSiteError(se)
	}

	return 1
}

// exitCodeFromSiteError maps SiteError categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromSiteError(err *SiteError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Broken links under a throw policy
	case CategorySidebar:
		return 6
	case CategoryConfig:
		return 7
	case CategoryExternal:
		return 8
	case CategoryContent, CategoryFileSystem:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if se, ok := As(err); ok {
		return a.formatSiteError(se)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatSiteError formats a SiteError for display.
func (a *CLIErrorAdapter) formatSiteError(err *SiteError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategorySidebar, CategoryValidation:
		// The cause names the offending field or identifier; keep it.
		if err.Cause != nil {
			return fmt.Sprintf("%s: %v", err.Message, err.Cause)
		}
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// Report logs the error when appropriate, prints it and returns the exit code.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Report(err))
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if se, ok := As(err); ok {
		return se.Category == CategoryInternal || se.Category == CategoryExternal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if se, ok := As(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(se.Category)),
		}
		for k, v := range se.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if se.Cause != nil {
			attrs = append(attrs, slog.String("error", se.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(se.Severity), se.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts SiteError severity to slog level.
func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
