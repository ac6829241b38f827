package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *AnalysisError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<metafile>"
	}

	fmt.Fprintf(&b, "❌ %s in %s [%s]\n", categoryDisplayName(e.Category), file, e.Code)

	if e.Path != "" {
		fmt.Fprintf(&b, "  Node: %s\n", e.Path)
	}
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *AnalysisError) string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s [%s]", e.File, e.Message, e.Code)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryMalformedInput:
		return "Malformed Metafile"
	case CategorySchema:
		return "Schema Violation"
	default:
		return "Error"
	}
}
