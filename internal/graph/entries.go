package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// FindEntryPoints returns the nodes of part that no internal import edge
// targets, in document order. A fully cyclic graph has no entry points and
// yields an empty slice.
func FindEntryPoints(part *metafile.Part) []string {
	imported := make(Set)
	part.Each(func(_ string, node *metafile.Node) {
		for _, imp := range node.Imports {
			if imp.Internal() {
				imported.Add(imp.Path)
			}
		}
	})

	entries := make([]string, 0)
	for _, path := range part.Keys() {
		if !imported.Has(path) {
			entries = append(entries, path)
		}
	}
	return entries
}

// IsLeaf reports whether every outbound edge of node is external. A node
// without imports is a leaf.
func IsLeaf(node *metafile.Node) bool {
	for _, imp := range node.Imports {
		if imp.Internal() {
			return false
		}
	}
	return true
}

// FindLeaves returns the leaf nodes of part in document order
func FindLeaves(part *metafile.Part) []string {
	leaves := make([]string, 0)
	part.Each(func(path string, node *metafile.Node) {
		if IsLeaf(node) {
			leaves = append(leaves, path)
		}
	})
	return leaves
}
