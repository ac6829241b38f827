package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ ENTRY NOT FOUND: dist/mian.js
//	   No entry point named 'dist/mian.js'.
//
//	   Did you mean: dist/main.js?
//
//	   → List entry points: filemap entries --metafile meta.json
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Detail != "" {
		for _, line := range strings.Split(opts.Detail, "\n") {
			bodyColor.Fprintf(&b, "   %s\n", line)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// AnalysisError renders a metafile error. Errors that are not
// *errors.AnalysisError are shown as a generic failure.
func AnalysisError(err error, noColor bool) string {
	ae, ok := ferrors.As(err)
	if !ok {
		return FormatError(ErrorOptions{
			Level:   ErrorLevelError,
			Context: "ANALYSIS FAILED",
			Problem: err.Error(),
			NoColor: noColor,
		})
	}

	context := "MALFORMED METAFILE"
	if ae.Category == ferrors.CategorySchema {
		context = "SCHEMA VIOLATION"
	}

	var detail []string
	if ae.File != "" {
		detail = append(detail, fmt.Sprintf("File: %s", ae.File))
	}
	if ae.Path != "" {
		detail = append(detail, fmt.Sprintf("Node: %s", ae.Path))
	}
	if ae.Field != "" {
		detail = append(detail, fmt.Sprintf("Field: %s", ae.Field))
	}
	if ae.Suggestion != "" {
		detail = append(detail, fmt.Sprintf("Hint: %s", ae.Suggestion))
	}

	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: fmt.Sprintf("%s [%s]", context, ae.Code),
		Problem: ae.Message,
		Detail:  strings.Join(detail, "\n"),
		HelpCommands: []string{
			"Regenerate the metafile: esbuild --metafile=meta.json ...",
		},
		NoColor: noColor,
	})
}

// EntryNotFoundError creates a standardized entry point not found error
func EntryNotFoundError(entry, metafile string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "ENTRY NOT FOUND",
		Problem:     entry,
		Detail:      fmt.Sprintf("No entry point named '%s'.", entry),
		Suggestions: suggestions,
		HelpCommands: []string{
			fmt.Sprintf("List entry points: filemap entries --metafile %s", metafile),
		},
		NoColor: noColor,
	})
}

// UsageError creates a standardized error for invalid flag combinations
func UsageError(message, command string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "INVALID USAGE",
		Problem:      message,
		HelpCommands: []string{fmt.Sprintf("Get help: filemap %s --help", command)},
		NoColor:      noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat filemap.yml",
			"Get help: filemap --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
