package errors

import "fmt"

// Malformed input error codes (MAL100-199)
const (
	// ErrInvalidJSON indicates the document is not valid JSON
	ErrInvalidJSON ErrorCode = "MAL100"
	// ErrMissingSection indicates a missing top-level inputs/outputs mapping
	ErrMissingSection ErrorCode = "MAL101"
	// ErrSectionNotObject indicates inputs/outputs is present but not an object
	ErrSectionNotObject ErrorCode = "MAL102"
	// ErrInvalidNode indicates a node record that cannot be decoded
	ErrInvalidNode ErrorCode = "MAL103"
	// ErrDanglingImport indicates an internal import whose target is not a node
	ErrDanglingImport ErrorCode = "MAL104"
	// ErrUnreadableFile indicates the metafile could not be read from disk
	ErrUnreadableFile ErrorCode = "MAL105"
)

// Schema violation error codes (SCH200-299)
const (
	// ErrUnknownImportKind indicates an import edge with an unrecognized kind
	ErrUnknownImportKind ErrorCode = "SCH200"
)

// NewInvalidJSON creates a MAL100 error
func NewInvalidJSON(reason string) *AnalysisError {
	return newError(
		ErrInvalidJSON,
		"invalid_json",
		CategoryMalformedInput,
		fmt.Sprintf("Metafile is not valid JSON: %s", reason),
	).WithSuggestion("Regenerate the metafile with esbuild's `metafile: true` option")
}

// NewMissingSection creates a MAL101 error
func NewMissingSection(section string) *AnalysisError {
	return newError(
		ErrMissingSection,
		"missing_section",
		CategoryMalformedInput,
		fmt.Sprintf("Metafile is missing the top-level %q mapping", section),
	).WithField(section).
		WithSuggestion("Make sure the file is an esbuild metafile and not a different build manifest")
}

// NewSectionNotObject creates a MAL102 error
func NewSectionNotObject(section, actual string) *AnalysisError {
	return newError(
		ErrSectionNotObject,
		"section_not_object",
		CategoryMalformedInput,
		fmt.Sprintf("Metafile field %q must be an object, got %s", section, actual),
	).WithField(section)
}

// NewInvalidNode creates a MAL103 error
func NewInvalidNode(section, path string, cause error) *AnalysisError {
	return newError(
		ErrInvalidNode,
		"invalid_node",
		CategoryMalformedInput,
		fmt.Sprintf("Cannot decode %s node %q: %v", section, path, cause),
	).WithField(section).WithPath(path).WithCause(cause)
}

// NewDanglingImport creates a MAL104 error
func NewDanglingImport(section, from, target string) *AnalysisError {
	return newError(
		ErrDanglingImport,
		"dangling_import",
		CategoryMalformedInput,
		fmt.Sprintf("%s node %q imports %q, which is not present in %s", section, from, target, section),
	).WithField(section).WithPath(from).
		WithSuggestion("Mark imports of untracked code as external, or regenerate the metafile")
}

// NewUnreadableFile creates a MAL105 error
func NewUnreadableFile(file string, cause error) *AnalysisError {
	return newError(
		ErrUnreadableFile,
		"unreadable_file",
		CategoryMalformedInput,
		fmt.Sprintf("Cannot read metafile: %v", cause),
	).WithFile(file).WithCause(cause)
}

// NewUnknownImportKind creates a SCH200 error
func NewUnknownImportKind(section, from, target, kind string) *AnalysisError {
	return newError(
		ErrUnknownImportKind,
		"unknown_import_kind",
		CategorySchema,
		fmt.Sprintf("%s node %q imports %q with unknown kind %q", section, from, target, kind),
	).WithField(section).WithPath(from).
		WithSuggestion("Upgrade filemap to a version that understands this esbuild release")
}
