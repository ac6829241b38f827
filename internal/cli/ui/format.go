package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/esbuild-filemap/filemap/internal/stats"
)

// Format is an output format for command results
type Format string

const (
	FormatTable Format = "table"
	FormatTree  Format = "tree"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string against the formats a command accepts.
// The first allowed format is returned for an empty string.
func ParseFormat(s string, allowed ...Format) (Format, error) {
	if len(allowed) == 0 {
		allowed = []Format{FormatTable, FormatJSON, FormatYAML}
	}

	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return allowed[0], nil
	}
	if name == "yml" {
		name = string(FormatYAML)
	}

	names := make([]string, len(allowed))
	for i, f := range allowed {
		if string(f) == name {
			return f, nil
		}
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid output format: %s (valid: %s)", s, strings.Join(names, ", "))
}

// Machine reports whether f is a structured format
func (f Format) Machine() bool {
	return f == FormatJSON || f == FormatYAML
}

// Formatter writes structured data in JSON or YAML
type Formatter struct {
	Format Format
	Writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{Format: format, Writer: w}
}

// Print outputs data in the configured format. Human formats fall back to
// indented JSON.
func (f *Formatter) Print(data any) error {
	switch f.Format {
	case FormatYAML:
		encoder := yaml.NewEncoder(f.Writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// Bytes renders a byte count for humans, e.g. "1.2 kB"
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}

// Count renders an integer with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Percent renders a percentage, "n/a" when undefined
func Percent(f stats.Float) string {
	if !f.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(f))
}
