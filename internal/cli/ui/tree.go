package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/esbuild-filemap/filemap/internal/graph"
)

// TreeOptions configures chunk-layer tree rendering
type TreeOptions struct {
	NoColor bool
	// ShowEager lists the eagerly loaded chunks under each layer
	ShowEager bool
}

// RenderLayerTree draws a chunk-layer forest with box-drawing connectors
//
// Example output:
//
//	dist/main.js  700 B – 1.0 kB
//	├── + dist/util.js
//	└── dist/lazy.js  300 B – 300 B
func RenderLayerTree(w io.Writer, layers []*graph.ChunkLayer, opts TreeOptions) {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	if opts.NoColor {
		bold.DisableColor()
		gray.DisableColor()
		green.DisableColor()
	}

	var render func(layer *graph.ChunkLayer, prefix string, root bool)
	render = func(layer *graph.ChunkLayer, prefix string, root bool) {
		size := fmt.Sprintf("%s – %s", Bytes(layer.MinNewBytes), Bytes(layer.MaxNewBytes))
		if root {
			bold.Fprint(w, layer.Path)
		} else {
			fmt.Fprint(w, layer.Path)
		}
		gray.Fprintf(w, "  %s\n", size)

		type item struct {
			eager string
			layer *graph.ChunkLayer
		}
		var items []item
		if opts.ShowEager {
			for _, path := range layer.EagerImports {
				items = append(items, item{eager: path})
			}
		}
		for _, child := range layer.ChunkLayers {
			items = append(items, item{layer: child})
		}

		for i, it := range items {
			connector, indent := "├── ", "│   "
			if i == len(items)-1 {
				connector, indent = "└── ", "    "
			}
			gray.Fprint(w, prefix+connector)
			if it.layer == nil {
				green.Fprintf(w, "+ %s\n", it.eager)
				continue
			}
			render(it.layer, prefix+indent, false)
		}
	}

	for i, layer := range layers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		render(layer, "", true)
	}
}
