package graph

import (
	"github.com/esbuild-filemap/filemap/internal/metafile"
)

type nodeDef struct {
	path    string
	bytes   uint64
	imports []metafile.Import
}

func node(path string, bytes uint64, imports ...metafile.Import) nodeDef {
	return nodeDef{path: path, bytes: bytes, imports: imports}
}

func static(path string) metafile.Import {
	return metafile.Import{Path: path, Kind: metafile.KindImportStatement}
}

func requireCall(path string) metafile.Import {
	return metafile.Import{Path: path, Kind: metafile.KindRequireCall}
}

func dynamic(path string) metafile.Import {
	return metafile.Import{Path: path, Kind: metafile.KindDynamicImport}
}

func external(path string) metafile.Import {
	return metafile.Import{Path: path, Kind: metafile.KindImportStatement, External: true}
}

func newPart(defs ...nodeDef) *metafile.Part {
	part := metafile.NewPart()
	for _, d := range defs {
		imports := d.imports
		if imports == nil {
			imports = []metafile.Import{}
		}
		part.Set(d.path, &metafile.Node{Bytes: d.bytes, Imports: imports})
	}
	return part
}

// scenarioPart is the documented main/util/lazy example
func scenarioPart() *metafile.Part {
	return newPart(
		node("main.js", 500, static("util.js"), dynamic("lazy.js")),
		node("util.js", 200),
		node("lazy.js", 300),
	)
}

// nestedPart has lazy layers two levels deep and chunks shared between
// sibling layers.
func nestedPart() *metafile.Part {
	return newPart(
		node("E", 100, static("A"), dynamic("L1"), dynamic("L2")),
		node("A", 10, dynamic("L3")),
		node("L1", 50, static("S"), dynamic("D")),
		node("L2", 60, static("S"), static("T")),
		node("S", 7),
		node("T", 3),
		node("L3", 40, static("S")),
		node("D", 20, static("T")),
	)
}

func sumBytes(part *metafile.Part, paths []string) uint64 {
	var total uint64
	for _, p := range paths {
		total += part.Bytes(p)
	}
	return total
}
