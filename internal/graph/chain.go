package graph

import "github.com/esbuild-filemap/filemap/internal/metafile"

// FindLongestImportChain returns the longest simple path of internal imports
// starting at start. Ties go to the candidate reached through the import
// listed first. A node without internal imports yields []string{start}.
func FindLongestImportChain(part *metafile.Part, start string) []string {
	return NewChainFinder(part).Find(start)
}

// ChainFinder searches longest import chains over one part.
//
// The search extends paths edge by edge and never revisits a node already on
// the current path. Nodes that cannot reach a cycle have a longest chain that
// does not depend on the path leading to them, so those results are
// memoized; only the cyclic region is searched exhaustively.
//
// A ChainFinder is not safe for concurrent use.
type ChainFinder struct {
	part    *metafile.Part
	tainted Set
	memo    map[string][]string
}

// NewChainFinder prepares a finder for part
func NewChainFinder(part *metafile.Part) *ChainFinder {
	return &ChainFinder{
		part:    part,
		tainted: findCycleReaching(part),
		memo:    make(map[string][]string),
	}
}

// Find returns the longest import chain starting at start
func (cf *ChainFinder) Find(start string) []string {
	chain := cf.extend(start, NewSet(start))
	result := make([]string, len(chain))
	copy(result, chain)
	return result
}

func (cf *ChainFinder) extend(current string, onPath Set) []string {
	if chain, ok := cf.memo[current]; ok {
		return chain
	}

	best := []string{current}
	if node, ok := cf.part.Get(current); ok {
		for _, imp := range node.Imports {
			if !imp.Internal() || onPath.Has(imp.Path) {
				continue
			}

			onPath.Add(imp.Path)
			tail := cf.extend(imp.Path, onPath)
			onPath.Remove(imp.Path)

			if len(tail)+1 > len(best) {
				best = make([]string, 0, len(tail)+1)
				best = append(best, current)
				best = append(best, tail...)
			}
		}
	}

	if !cf.tainted.Has(current) {
		cf.memo[current] = best
	}
	return best
}

// findCycleReaching returns the nodes that belong to, or can reach, a
// strongly connected component with more than one node. Self imports are
// ignored since a path never revisits its own node.
func findCycleReaching(part *metafile.Part) Set {
	tainted := make(Set)
	for _, component := range stronglyConnected(part) {
		if len(component) > 1 {
			for _, path := range component {
				tainted.Add(path)
			}
		}
	}
	if tainted.Len() == 0 {
		return tainted
	}

	importers := make(map[string][]string)
	part.Each(func(path string, node *metafile.Node) {
		for _, imp := range node.Imports {
			if imp.Internal() {
				importers[imp.Path] = append(importers[imp.Path], path)
			}
		}
	})

	stack := make([]string, 0, tainted.Len())
	for path := range tainted {
		stack = append(stack, path)
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, importer := range importers[current] {
			if !tainted.Has(importer) {
				tainted.Add(importer)
				stack = append(stack, importer)
			}
		}
	}

	return tainted
}

// stronglyConnected runs Tarjan's algorithm over the internal edges of part
func stronglyConnected(part *metafile.Part) [][]string {
	var (
		index      int
		indices    = make(map[string]int)
		lowlinks   = make(map[string]int)
		onStack    = make(Set)
		stack      []string
		components [][]string
	)

	var connect func(path string)
	connect = func(path string) {
		indices[path] = index
		lowlinks[path] = index
		index++
		stack = append(stack, path)
		onStack.Add(path)

		if node, ok := part.Get(path); ok {
			for _, imp := range node.Imports {
				if !imp.Internal() || !part.Has(imp.Path) {
					continue
				}
				if _, seen := indices[imp.Path]; !seen {
					connect(imp.Path)
					lowlinks[path] = min(lowlinks[path], lowlinks[imp.Path])
				} else if onStack.Has(imp.Path) {
					lowlinks[path] = min(lowlinks[path], indices[imp.Path])
				}
			}
		}

		if lowlinks[path] == indices[path] {
			var component []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack.Remove(top)
				component = append(component, top)
				if top == path {
					break
				}
			}
			components = append(components, component)
		}
	}

	for _, path := range part.Keys() {
		if _, seen := indices[path]; !seen {
			connect(path)
		}
	}

	return components
}
