package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/esbuild-filemap/filemap/internal/analyzer"
	"github.com/esbuild-filemap/filemap/internal/cli/ui"
	"github.com/esbuild-filemap/filemap/internal/graph"
)

var (
	layersMetafile    string
	layersEntry       string
	layersInteractive bool
	layersFormat      string
	layersEager       bool
)

// selectEntry asks the user to pick one of several entry points
var selectEntry = func(entries []string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "Select an entry point:",
		Options: entries,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// NewLayersCommand creates the layers command
func NewLayersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Show how output chunks load in layers",
		Long: `Show the chunk layers of the output bundle.

Each output entry point is the root of a tree. A node is a chunk loaded
through a dynamic import together with everything it pulls in statically;
its children are the chunks it can load lazily in turn. Every node shows
the bytes it adds at minimum and at most.

--entry roots the tree at a single output chunk, which need not be an
entry point.`,
		Example: `  # All entry points as trees
  filemap layers --metafile meta.json

  # One entry point, listing eagerly loaded chunks
  filemap layers --metafile meta.json --entry dist/main.js --eager

  # Pick the entry point from a list
  filemap layers --metafile meta.json --interactive`,
		Args: cobra.NoArgs,
		RunE: runLayers,
	}

	cmd.Flags().StringVar(&layersMetafile, "metafile", "", "Path to the esbuild metafile (required)")
	cmd.Flags().StringVar(&layersEntry, "entry", "", "Only show the layers under this output chunk")
	cmd.Flags().BoolVarP(&layersInteractive, "interactive", "i", false, "Choose the entry point interactively")
	cmd.Flags().StringVar(&layersFormat, "format", "", "Output format: tree, json or yaml (default: tree)")
	cmd.Flags().BoolVar(&layersEager, "eager", false, "List eagerly loaded chunks in the tree")

	return cmd
}

func runLayers(cmd *cobra.Command, args []string) error {
	if layersMetafile == "" {
		return newUsageError("layers", "--metafile is required")
	}
	if layersEntry != "" && layersInteractive {
		return newUsageError("layers", "--entry and --interactive cannot be combined")
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	name := layersFormat
	if name == "" {
		switch env.config.Output.Format {
		case "json", "yaml":
			name = env.config.Output.Format
		}
	}
	format, err := ui.ParseFormat(name, ui.FormatTree, ui.FormatJSON, ui.FormatYAML)
	if err != nil {
		return newUsageError("layers", "%v", err)
	}

	result, err := env.analyze(commandContext(cmd), layersMetafile, env.config.Analysis.Concurrency)
	if err != nil {
		return err
	}

	entry := layersEntry
	if layersInteractive && len(result.Layers) > 1 {
		entry, err = selectEntry(layerPaths(result.Layers))
		if err != nil {
			return err
		}
	}

	layers := result.Layers
	if entry != "" {
		layer, err := findLayer(result, entry)
		if err != nil {
			return err
		}
		layers = []*graph.ChunkLayer{layer}
	}

	out := cmd.OutOrStdout()
	if format.Machine() {
		return ui.NewFormatter(format, out).Print(layers)
	}
	if len(layers) == 0 {
		fmt.Fprintln(out, "No output entry points.")
		return nil
	}
	ui.RenderLayerTree(out, layers, ui.TreeOptions{NoColor: noColor, ShowEager: layersEager})
	return nil
}

// findLayer returns the layer tree rooted at entry. Output chunks that are
// not entry points are analyzed on demand as if they were loaded first.
func findLayer(result *analyzer.Result, entry string) (*graph.ChunkLayer, error) {
	for _, layer := range result.Layers {
		if layer.Path == entry {
			return layer, nil
		}
	}

	outputs := result.Metafile.Outputs
	if outputs.Has(entry) {
		return graph.AnalyzeChunkLayer(outputs, entry, make(graph.Set), true), nil
	}

	return nil, &entryNotFoundError{
		entry:       entry,
		metafile:    layersMetafile,
		suggestions: ui.FindSimilar(entry, outputs.Keys(), nil),
	}
}

func layerPaths(layers []*graph.ChunkLayer) []string {
	paths := make([]string, len(layers))
	for i, layer := range layers {
		paths[i] = layer.Path
	}
	return paths
}
