package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/esbuild-filemap/filemap/internal/analyzer"
	"github.com/esbuild-filemap/filemap/internal/cli/ui"
	"github.com/esbuild-filemap/filemap/internal/metafile"
	"github.com/esbuild-filemap/filemap/internal/report"
	"github.com/esbuild-filemap/filemap/internal/stats"
)

// eagerShareWarning is the share of the bundle an entry may load eagerly
// before it is flagged
const eagerShareWarning = 60.0

// largestChunkCount is how many chunks the summary lists
const largestChunkCount = 10

var (
	analyzeMetafile    string
	analyzeOutMeta     string
	analyzeOutReport   string
	analyzeFormat      string
	analyzeConcurrency int
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute bundle statistics for a metafile",
		Long: `Analyze an esbuild metafile and write its statistics.

For every entry point of both the inputs and the outputs graph, filemap
computes the eagerly loaded files, the lazily loaded files, the longest
static import chain and the eager size. Bundle-wide it reports chunk
counts and sizes, the compression ratio and leaf files.

Results go to --outmeta (JSON), --outreport (HTML) or, with --format, to
stdout. At least one destination is required.`,
		Example: `  # Write stats and an HTML report
  filemap analyze --metafile meta.json --outmeta stats.json --outreport report.html

  # Print a summary table
  filemap analyze --metafile meta.json --format table

  # Pipe stats into jq
  filemap analyze --metafile meta.json --format json | jq .entryStats`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&analyzeMetafile, "metafile", "", "Path to the esbuild metafile (required)")
	cmd.Flags().StringVar(&analyzeOutMeta, "outmeta", "", "Write bundle statistics as JSON to this path")
	cmd.Flags().StringVar(&analyzeOutReport, "outreport", "", "Write an HTML report to this path")
	cmd.Flags().StringVar(&analyzeFormat, "format", "", "Print results to stdout: table, json or yaml")
	cmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "Entries analyzed in parallel (default: config, then CPU count)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeMetafile == "" {
		return newUsageError("analyze", "--metafile is required")
	}
	printResults := cmd.Flags().Changed("format")
	if analyzeOutMeta == "" && analyzeOutReport == "" && !printResults {
		return newUsageError("analyze", "nothing to write: pass --outmeta, --outreport or --format")
	}
	if analyzeConcurrency < 0 {
		return newUsageError("analyze", "--concurrency must not be negative")
	}

	var format ui.Format
	if printResults {
		var err error
		format, err = ui.ParseFormat(analyzeFormat, ui.FormatTable, ui.FormatJSON, ui.FormatYAML)
		if err != nil {
			return newUsageError("analyze", "%v", err)
		}
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	concurrency := env.config.Analysis.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = analyzeConcurrency
	}

	result, err := env.analyze(commandContext(cmd), analyzeMetafile, concurrency)
	if err != nil {
		return err
	}

	status := cmd.ErrOrStderr()

	if analyzeOutMeta != "" {
		data, err := json.MarshalIndent(result.Stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		if err := writeFile(analyzeOutMeta, append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write %s: %w", analyzeOutMeta, err)
		}
		env.logger.Debug("wrote stats", zap.String("path", analyzeOutMeta))
		ui.WriteSuccess(status, fmt.Sprintf("Wrote stats to %s", analyzeOutMeta), noColor)
	}

	if analyzeOutReport != "" {
		if err := writeReport(analyzeOutReport, result); err != nil {
			return err
		}
		env.logger.Debug("wrote report", zap.String("path", analyzeOutReport))
		ui.WriteSuccess(status, fmt.Sprintf("Wrote report to %s", analyzeOutReport), noColor)
	}

	if !printResults {
		return nil
	}

	out := cmd.OutOrStdout()
	if format.Machine() {
		return ui.NewFormatter(format, out).Print(result.Stats)
	}
	printSummary(out, result)
	return nil
}

func writeReport(path string, result *analyzer.Result) error {
	var buf bytes.Buffer
	err := report.Render(&buf, report.Page{
		Title:    fmt.Sprintf("Bundle report: %s", filepath.Base(analyzeMetafile)),
		Metafile: result.Metafile,
		Stats:    result.Stats,
		Layers:   result.Layers,
		BuildID:  result.Hash[:12],
	})
	if err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// printSummary writes the human-readable rollup of an analysis
func printSummary(w io.Writer, result *analyzer.Result) {
	bundle := result.Stats

	ui.Header(w, "Bundle", noColor)
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Chunks", ui.Count(bundle.NumberOfChunks))
	kv.AddRow("Bundle size", ui.Bytes(bundle.BundleSize))
	kv.AddRow("Source size", ui.Bytes(bundle.PreBundleSize))
	kv.AddRow("Compression", ui.Percent(bundle.CompressionPercentage))
	if bundle.AverageChunkSize.Defined() {
		kv.AddRow("Average chunk", ui.Bytes(uint64(bundle.AverageChunkSize)))
	} else {
		kv.AddRow("Average chunk", "n/a")
	}
	kv.AddRow("Smallest chunk", chunkLabel(bundle.MinChunk))
	kv.AddRow("Largest chunk", chunkLabel(bundle.MaxChunk))
	kv.AddRow("Leaf files", ui.Count(len(bundle.FileLeafs)))
	kv.AddRow("Leaf chunks", ui.Count(len(bundle.ChunkLeafs)))
	kv.Render()
	fmt.Fprintln(w)

	ui.Header(w, "Entry points", noColor)
	paths := append(bundle.EntriesOf(metafile.SectionOutputs), bundle.EntriesOf(metafile.SectionInputs)...)
	if len(paths) == 0 {
		fmt.Fprintln(w, "No entry points.")
	} else {
		table := ui.NewTable(w, []string{"Entry", "Part", "Eager", "Lazy", "Depth", "Eager size", "Share"}, &ui.TableOptions{
			NoColor:    noColor,
			Alignments: []ui.Alignment{ui.AlignLeft, ui.AlignLeft, ui.AlignRight, ui.AlignRight, ui.AlignRight, ui.AlignRight, ui.AlignRight},
		})
		var heavy []string
		for _, path := range paths {
			entry := bundle.EntryStats[path]
			share := "-"
			if entry.Type == metafile.SectionOutputs && bundle.BundleSize > 0 {
				pct := eagerShare(entry, bundle)
				share = fmt.Sprintf("%.1f%%", pct)
				if pct > eagerShareWarning {
					heavy = append(heavy, fmt.Sprintf("%s loads %.1f%% of the bundle eagerly", path, pct))
				}
			}
			table.AddRow(
				path,
				string(entry.Type),
				ui.Count(len(entry.EagerImports)),
				ui.Count(len(entry.LazyImports)),
				ui.Count(entry.LongestDependencyChainDepth),
				ui.Bytes(entry.EagerImportSize),
				share,
			)
		}
		table.Render()
		for _, msg := range heavy {
			fmt.Fprint(w, ui.Warning(msg, noColor))
		}
	}
	fmt.Fprintln(w)

	ui.Header(w, "Largest chunks", noColor)
	chunks := stats.LargestChunks(result.Metafile.Outputs, largestChunkCount)
	if len(chunks) == 0 {
		fmt.Fprintln(w, "No chunks.")
		return
	}
	table := ui.NewTable(w, []string{"Chunk", "Size"}, &ui.TableOptions{
		NoColor:    noColor,
		Alignments: []ui.Alignment{ui.AlignLeft, ui.AlignRight},
	})
	for _, chunk := range chunks {
		table.AddRow(chunk.Name, ui.Bytes(chunk.Bytes))
	}
	table.Render()
}

func eagerShare(entry *stats.EntryStats, bundle *stats.BundleStats) float64 {
	return float64(entry.EagerImportSize) / float64(bundle.BundleSize) * 100
}

func chunkLabel(chunk *stats.ChunkSize) string {
	if chunk == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s (%s)", chunk.Name, ui.Bytes(chunk.Bytes))
}
