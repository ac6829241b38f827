package stats

import (
	"math"
	"sort"

	"github.com/esbuild-filemap/filemap/internal/metafile"
)

// CalcBundleSize sums the bytes of every node in part
func CalcBundleSize(part *metafile.Part) uint64 {
	var total uint64
	part.Each(func(_ string, node *metafile.Node) {
		total += node.Bytes
	})
	return total
}

// CalcNumberOfChunks counts the nodes in part
func CalcNumberOfChunks(part *metafile.Part) int {
	return part.Len()
}

// CalcAverageChunkSize divides the bundle size by the number of chunks.
// It is NaN for an empty part.
func CalcAverageChunkSize(part *metafile.Part) Float {
	count := CalcNumberOfChunks(part)
	if count == 0 {
		return Float(math.NaN())
	}
	return Float(float64(CalcBundleSize(part)) / float64(count))
}

// CalcCompressionPercentage returns (1 - bundle/preBundle) * 100. It is
// negative when the bundle grew and NaN when preBundle is zero.
func CalcCompressionPercentage(preBundle, bundle uint64) Float {
	if preBundle == 0 {
		return Float(math.NaN())
	}
	return Float((1 - float64(bundle)/float64(preBundle)) * 100)
}

// CalcMinChunkSize returns the smallest node of part. Ties go to the first
// node in document order. It is nil for an empty part.
func CalcMinChunkSize(part *metafile.Part) *ChunkSize {
	return pickChunk(part, func(candidate, best uint64) bool { return candidate < best })
}

// CalcMaxChunkSize returns the largest node of part. Ties go to the first
// node in document order. It is nil for an empty part.
func CalcMaxChunkSize(part *metafile.Part) *ChunkSize {
	return pickChunk(part, func(candidate, best uint64) bool { return candidate > best })
}

func pickChunk(part *metafile.Part, better func(candidate, best uint64) bool) *ChunkSize {
	var picked *ChunkSize
	part.Each(func(path string, node *metafile.Node) {
		if picked == nil || better(node.Bytes, picked.Bytes) {
			picked = &ChunkSize{Name: path, Bytes: node.Bytes}
		}
	})
	return picked
}

// CalcEagerImportSize sums the bytes of the given nodes
func CalcEagerImportSize(part *metafile.Part, eagerImports []string) uint64 {
	var total uint64
	for _, path := range eagerImports {
		total += part.Bytes(path)
	}
	return total
}

// LargestChunks returns up to n nodes of part ordered by size, largest first.
// Equal sizes keep document order.
func LargestChunks(part *metafile.Part, n int) []ChunkSize {
	chunks := make([]ChunkSize, 0, part.Len())
	part.Each(func(path string, node *metafile.Node) {
		chunks = append(chunks, ChunkSize{Name: path, Bytes: node.Bytes})
	})
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Bytes > chunks[j].Bytes
	})
	if n >= 0 && len(chunks) > n {
		chunks = chunks[:n]
	}
	return chunks
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
