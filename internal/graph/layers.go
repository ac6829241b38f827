package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// ChunkLayer is one node of the tree mirroring runtime lazy-load
// boundaries. The root of a tree is an entry point; every child is seeded by
// a dynamic import discovered at the boundary of its parent.
type ChunkLayer struct {
	// Path is the chunk anchoring the layer
	Path string `json:"path" yaml:"path"`
	// MinNewBytes is the number of bytes guaranteed to be new when the layer
	// loads
	MinNewBytes uint64 `json:"minNewBytes" yaml:"minNewBytes"`
	// MaxNewBytes is the number of bytes the layer and its descendants could
	// load when nothing was shared with earlier layers
	MaxNewBytes uint64 `json:"maxNewBytes" yaml:"maxNewBytes"`
	// IsEntryPoint is set on the root layer only
	IsEntryPoint bool `json:"isEntryPoint" yaml:"isEntryPoint"`
	// EagerImports are the chunks pulled in eagerly by this layer, flattened
	// in discovery order
	EagerImports []string `json:"eagerImports" yaml:"eagerImports"`
	// ChunkLayers are the lazily loaded child layers
	ChunkLayers []*ChunkLayer `json:"chunkLayers" yaml:"chunkLayers"`
}

// Walk calls fn for the layer and every descendant in depth-first pre-order
func (cl *ChunkLayer) Walk(fn func(layer *ChunkLayer, depth int)) {
	cl.walk(fn, 0)
}

func (cl *ChunkLayer) walk(fn func(layer *ChunkLayer, depth int), depth int) {
	fn(cl, depth)
	for _, child := range cl.ChunkLayers {
		child.walk(fn, depth+1)
	}
}

// eagerChunk is the result of expanding one chunk's eager imports
type eagerChunk struct {
	minBytes     uint64
	maxBytes     uint64
	eagerImports []string
	lazyImports  []string
}

// AnalyzeChunkLayers builds one chunk-layer tree per entry point of part.
// Each tree gets its own imported set; trees never share state.
func AnalyzeChunkLayers(part *metafile.Part) []*ChunkLayer {
	entries := FindEntryPoints(part)
	layers := make([]*ChunkLayer, len(entries))
	for i, entry := range entries {
		layers[i] = AnalyzeChunkLayer(part, entry, make(Set), true)
	}
	return layers
}

// AnalyzeChunkLayer builds the layer anchored at start and, recursively, one
// child layer per dynamic import that was not already loaded.
//
// imported is shared by the whole call tree and mutated in place: every
// chunk is added before its own imports are explored, so no chunk is
// expanded twice anywhere in the tree, even in cyclic graphs.
//
// Eager bytes of imported chunks count towards MinNewBytes only while
// expanding an entry point layer. Deeper layers may already have been loaded
// by an earlier sibling, so only their anchor chunk is guaranteed new.
// MaxNewBytes counts every chunk once, including those of child layers.
func AnalyzeChunkLayer(part *metafile.Part, start string, imported Set, isEntryPoint bool) *ChunkLayer {
	eager := analyzeEagerChunk(part, start, imported, isEntryPoint)

	layer := &ChunkLayer{
		Path:         start,
		MinNewBytes:  eager.minBytes,
		MaxNewBytes:  eager.maxBytes,
		IsEntryPoint: isEntryPoint,
		EagerImports: eager.eagerImports,
		ChunkLayers:  make([]*ChunkLayer, 0, len(eager.lazyImports)),
	}

	for _, seed := range eager.lazyImports {
		// an earlier sibling layer may have loaded it eagerly
		if imported.Has(seed) {
			continue
		}
		child := AnalyzeChunkLayer(part, seed, imported, false)
		layer.ChunkLayers = append(layer.ChunkLayers, child)
		layer.MaxNewBytes += child.MaxNewBytes
	}

	return layer
}

func analyzeEagerChunk(part *metafile.Part, path string, imported Set, isEntryPoint bool) eagerChunk {
	imported.Add(path)

	result := eagerChunk{eagerImports: make([]string, 0)}
	node, ok := part.Get(path)
	if !ok {
		return result
	}
	result.minBytes = node.Bytes
	result.maxBytes = node.Bytes

	var nested []string
	for _, imp := range node.Imports {
		if !imp.Internal() || imp.Kind.IsDynamic() || imported.Has(imp.Path) {
			continue
		}

		result.eagerImports = append(result.eagerImports, imp.Path)
		child := analyzeEagerChunk(part, imp.Path, imported, isEntryPoint)
		if isEntryPoint {
			result.minBytes += child.minBytes
		}
		result.maxBytes += child.maxBytes
		result.eagerImports = append(result.eagerImports, child.eagerImports...)
		nested = append(nested, child.lazyImports...)
	}

	// Own dynamic imports come first, then those found in eager children.
	seeds := make([]string, 0, len(nested))
	for _, imp := range node.Imports {
		if imp.Internal() && imp.Kind.IsDynamic() && !imported.Has(imp.Path) {
			seeds = append(seeds, imp.Path)
		}
	}
	seeds = append(seeds, nested...)
	result.lazyImports = unique(seeds)

	return result
}

// unique drops repeated paths, keeping the first occurrence
func unique(paths []string) []string {
	seen := make(Set, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen.Has(p) {
			continue
		}
		seen.Add(p)
		result = append(result, p)
	}
	return result
}
