// Package graph implements the import-graph algorithms behind bundle
// analysis: entry point resolution, eager and lazy closures, longest import
// chains and the recursive chunk-layer tree.
//
// Every function here is a pure function of the metafile part it receives.
// Visited sets are created per call, with the single exception of the
// imported set threaded through AnalyzeChunkLayer.
package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// Set is a set of node paths
type Set map[string]struct{}

// NewSet creates a set holding the given paths
func NewSet(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts a path
func (s Set) Add(path string) {
	s[path] = struct{}{}
}

// Remove deletes a path
func (s Set) Remove(path string) {
	delete(s, path)
}

// Has reports whether path is in the set
func (s Set) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Len returns the number of paths
func (s Set) Len() int {
	return len(s)
}

// Ordered returns the members of the set in the document order of part.
// Members that are not nodes of part are dropped.
func (s Set) Ordered(part *metafile.Part) []string {
	result := make([]string, 0, len(s))
	for _, path := range part.Keys() {
		if s.Has(path) {
			result = append(result, path)
		}
	}
	return result
}
