// Package stats folds node sizes and graph classifications into bundle-wide
// and per-entry statistics.
package stats

import (
	"encoding/json"
	"math"

	"github.com/esbuild-filemap/filemap/internal/metafile"
)

// Float is a float64 whose undefined values (NaN, ±Inf) encode as JSON null.
// Degenerate bundles (no inputs, no chunks) produce such values; they are
// results, not errors.
type Float float64

// Defined reports whether f is a finite number
func (f Float) Defined() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalJSON encodes undefined values as null
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON decodes null as NaN
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// ChunkSize names a chunk together with its size
type ChunkSize struct {
	Name  string `json:"name" yaml:"name"`
	Bytes uint64 `json:"bytes" yaml:"bytes"`
}

// EntryStats describes what one entry point loads
type EntryStats struct {
	// Type is the part the entry belongs to: inputs or outputs
	Type                        metafile.Section `json:"type" yaml:"type"`
	EagerImports                []string         `json:"eagerImports" yaml:"eagerImports"`
	LazyImports                 []string         `json:"lazyImports" yaml:"lazyImports"`
	LongestDependencyChain      []string         `json:"longestDependencyChain" yaml:"longestDependencyChain"`
	LongestDependencyChainDepth int              `json:"longestDependencyChainDepth" yaml:"longestDependencyChainDepth"`
	EagerImportSize             uint64           `json:"eagerImportSize" yaml:"eagerImportSize"`
}

// BundleStats is the bundle-wide rollup
type BundleStats struct {
	NumberOfChunks        int        `json:"numberOfChunks" yaml:"numberOfChunks"`
	PreBundleSize         uint64     `json:"preBundleSize" yaml:"preBundleSize"`
	BundleSize            uint64     `json:"bundleSize" yaml:"bundleSize"`
	CompressionPercentage Float      `json:"compressionPercentage" yaml:"compressionPercentage"`
	MinChunk              *ChunkSize `json:"minChunk" yaml:"minChunk"`
	MaxChunk              *ChunkSize `json:"maxChunk" yaml:"maxChunk"`
	AverageChunkSize      Float      `json:"averageChunkSize" yaml:"averageChunkSize"`
	// FileLeafs are inputs whose imports are all external
	FileLeafs []string `json:"fileLeafs" yaml:"fileLeafs"`
	// ChunkLeafs are outputs whose imports are all external
	ChunkLeafs []string               `json:"chunkLeafs" yaml:"chunkLeafs"`
	EntryStats map[string]*EntryStats `json:"entryStats" yaml:"entryStats"`
}

// EntriesOf returns the entry paths of the given type, sorted by path
func (bs *BundleStats) EntriesOf(section metafile.Section) []string {
	entries := make([]string, 0)
	for _, path := range sortedKeys(bs.EntryStats) {
		if bs.EntryStats[path].Type == section {
			entries = append(entries, path)
		}
	}
	return entries
}
