package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esbuild-filemap/filemap/internal/cli/ui"
	"github.com/esbuild-filemap/filemap/internal/metafile"
	"github.com/esbuild-filemap/filemap/internal/stats"
)

var (
	entriesMetafile string
	entriesPart     string
	entriesFormat   string
	entriesChain    bool
)

// NewEntriesCommand creates the entries command
func NewEntriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List entry points and what they load",
		Long: `List the entry points of a metafile.

An entry point is a file or chunk nothing else imports. For each one the
number of eager and lazy imports, the depth of the longest static import
chain and the eager size are shown.`,
		Example: `  # Output entry points only
  filemap entries --metafile meta.json --part outputs

  # Include the longest import chain of every entry
  filemap entries --metafile meta.json --chain`,
		Args: cobra.NoArgs,
		RunE: runEntries,
	}

	cmd.Flags().StringVar(&entriesMetafile, "metafile", "", "Path to the esbuild metafile (required)")
	cmd.Flags().StringVar(&entriesPart, "part", "", "Only list entries of this part: inputs or outputs")
	cmd.Flags().StringVar(&entriesFormat, "format", "", "Output format: table, json or yaml (default: config)")
	cmd.Flags().BoolVar(&entriesChain, "chain", false, "Print the longest import chain of each entry")

	return cmd
}

func runEntries(cmd *cobra.Command, args []string) error {
	if entriesMetafile == "" {
		return newUsageError("entries", "--metafile is required")
	}

	sections := []metafile.Section{metafile.SectionOutputs, metafile.SectionInputs}
	switch entriesPart {
	case "":
	case string(metafile.SectionInputs), string(metafile.SectionOutputs):
		sections = []metafile.Section{metafile.Section(entriesPart)}
	default:
		return newUsageError("entries", "--part must be inputs or outputs, got %q", entriesPart)
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	name := entriesFormat
	if name == "" {
		name = env.config.Output.Format
	}
	format, err := ui.ParseFormat(name, ui.FormatTable, ui.FormatJSON, ui.FormatYAML)
	if err != nil {
		return newUsageError("entries", "%v", err)
	}

	result, err := env.analyze(commandContext(cmd), entriesMetafile, env.config.Analysis.Concurrency)
	if err != nil {
		return err
	}

	var paths []string
	for _, section := range sections {
		paths = append(paths, result.Stats.EntriesOf(section)...)
	}

	out := cmd.OutOrStdout()
	if format.Machine() {
		selected := make(map[string]*stats.EntryStats, len(paths))
		for _, path := range paths {
			selected[path] = result.Stats.EntryStats[path]
		}
		return ui.NewFormatter(format, out).Print(selected)
	}

	if len(paths) == 0 {
		fmt.Fprintln(out, "No entry points.")
		return nil
	}

	table := ui.NewTable(out, []string{"Entry", "Part", "Eager", "Lazy", "Depth", "Eager size"}, &ui.TableOptions{
		NoColor:    noColor,
		Alignments: []ui.Alignment{ui.AlignLeft, ui.AlignLeft, ui.AlignRight, ui.AlignRight, ui.AlignRight, ui.AlignRight},
	})
	for _, path := range paths {
		entry := result.Stats.EntryStats[path]
		table.AddRow(
			path,
			string(entry.Type),
			ui.Count(len(entry.EagerImports)),
			ui.Count(len(entry.LazyImports)),
			ui.Count(entry.LongestDependencyChainDepth),
			ui.Bytes(entry.EagerImportSize),
		)
	}
	table.Render()

	if entriesChain {
		fmt.Fprintln(out)
		for _, path := range paths {
			ui.Header(out, path, noColor)
			for i, link := range result.Stats.EntryStats[path].LongestDependencyChain {
				fmt.Fprintf(out, "%3d. %s\n", i+1, link)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
