package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// FindEagerImports returns the nodes guaranteed to load together with start:
// everything reachable over internal edges without crossing a dynamic
// import. The result always contains start.
func FindEagerImports(part *metafile.Part, start string) Set {
	eager := NewSet(start)
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := part.Get(current)
		if !ok {
			continue
		}

		for _, imp := range node.Imports {
			if !imp.Internal() || imp.Kind.IsDynamic() {
				continue
			}
			if eager.Has(imp.Path) {
				continue
			}
			eager.Add(imp.Path)
			stack = append(stack, imp.Path)
		}
	}

	return eager
}

// EagerImportSize sums the bytes of every node in eager
func EagerImportSize(part *metafile.Part, eager Set) uint64 {
	var total uint64
	for path := range eager {
		total += part.Bytes(path)
	}
	return total
}
