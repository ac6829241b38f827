package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// FindLazyImports returns the nodes reachable from start only by crossing at
// least one dynamic import, excluding anything in eager. Traversal continues
// through lazy nodes so that code they load (statically or dynamically) is
// classified as lazy too.
//
// Classification is relative to start: a node can be lazy for one entry and
// eager for another.
func FindLazyImports(part *metafile.Part, start string, eager Set) Set {
	type step struct {
		path string
		lazy bool
	}

	lazy := make(Set)
	visited := NewSet(start)
	stack := []step{{path: start}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := part.Get(current.path)
		if !ok {
			continue
		}

		for _, imp := range node.Imports {
			if !imp.Internal() || visited.Has(imp.Path) {
				continue
			}
			visited.Add(imp.Path)

			isLazy := !eager.Has(imp.Path) && (imp.Kind.IsDynamic() || current.lazy)
			if isLazy {
				lazy.Add(imp.Path)
			}
			stack = append(stack, step{path: imp.Path, lazy: isLazy})
		}
	}

	return lazy
}

// FindReachable returns every node reachable from start over internal edges
// of any kind, including start itself.
func FindReachable(part *metafile.Part, start string) Set {
	reachable := NewSet(start)
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := part.Get(current)
		if !ok {
			continue
		}

		for _, imp := range node.Imports {
			if imp.Internal() && !reachable.Has(imp.Path) {
				reachable.Add(imp.Path)
				stack = append(stack, imp.Path)
			}
		}
	}

	return reachable
}
