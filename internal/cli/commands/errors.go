package commands

import (
	"fmt"
	"strings"
)

// usageError reports an invalid flag combination, detected before any
// analysis starts
type usageError struct {
	command string
	message string
}

func (e *usageError) Error() string {
	return e.message
}

func newUsageError(command, format string, args ...any) error {
	return &usageError{command: command, message: fmt.Sprintf(format, args...)}
}

// entryNotFoundError reports an --entry that names no known chunk
type entryNotFoundError struct {
	entry       string
	metafile    string
	suggestions []string
}

func (e *entryNotFoundError) Error() string {
	msg := fmt.Sprintf("entry %q not found in %s", e.entry, e.metafile)
	if len(e.suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.suggestions, ", "))
	}
	return msg
}

// configError wraps a failure to load or validate filemap.yml
type configError struct {
	err error
}

func (e *configError) Error() string {
	return e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}
