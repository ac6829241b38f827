package stats

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/esbuild-filemap/filemap/internal/graph"
	"github.com/esbuild-filemap/filemap/internal/metafile"
)

// Options configures Compute
type Options struct {
	// Concurrency bounds how many entries are analyzed at once (0 = NumCPU)
	Concurrency int
	// Logger receives debug output; nil disables logging
	Logger *zap.Logger
}

type entryTask struct {
	section metafile.Section
	path    string
}

// Compute derives BundleStats from meta. Entries of both parts are analyzed
// independently and in parallel; results do not depend on scheduling.
func Compute(ctx context.Context, meta *metafile.Metafile, opts Options) (*BundleStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	preBundleSize := CalcBundleSize(meta.Inputs)
	bundleSize := CalcBundleSize(meta.Outputs)

	bundle := &BundleStats{
		NumberOfChunks:        CalcNumberOfChunks(meta.Outputs),
		PreBundleSize:         preBundleSize,
		BundleSize:            bundleSize,
		CompressionPercentage: CalcCompressionPercentage(preBundleSize, bundleSize),
		MinChunk:              CalcMinChunkSize(meta.Outputs),
		MaxChunk:              CalcMaxChunkSize(meta.Outputs),
		AverageChunkSize:      CalcAverageChunkSize(meta.Outputs),
		FileLeafs:             graph.FindLeaves(meta.Inputs),
		ChunkLeafs:            graph.FindLeaves(meta.Outputs),
		EntryStats:            make(map[string]*EntryStats),
	}

	var tasks []entryTask
	for _, section := range []metafile.Section{metafile.SectionInputs, metafile.SectionOutputs} {
		for _, path := range graph.FindEntryPoints(meta.Part(section)) {
			tasks = append(tasks, entryTask{section: section, path: path})
		}
	}
	if len(tasks) == 0 {
		logger.Warn("metafile has no entry points")
	}

	results := make([]*EntryStats, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = ComputeEntry(meta.Part(task.section), task.section, task.path)
			logger.Debug("analyzed entry",
				zap.String("section", string(task.section)),
				zap.String("entry", task.path),
				zap.Int("eager", len(results[i].EagerImports)),
				zap.Int("lazy", len(results[i].LazyImports)),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute entry stats: %w", err)
	}

	for i, task := range tasks {
		if existing, ok := bundle.EntryStats[task.path]; ok {
			logger.Warn("entry path present in both inputs and outputs",
				zap.String("entry", task.path),
				zap.String("kept", string(task.section)),
				zap.String("dropped", string(existing.Type)),
			)
		}
		bundle.EntryStats[task.path] = results[i]
	}

	return bundle, nil
}

// ComputeEntry derives the stats of one entry point of part
func ComputeEntry(part *metafile.Part, section metafile.Section, entry string) *EntryStats {
	eager := graph.FindEagerImports(part, entry)
	lazy := graph.FindLazyImports(part, entry, eager)
	chain := graph.FindLongestImportChain(part, entry)

	return &EntryStats{
		Type:                        section,
		EagerImports:                eager.Ordered(part),
		LazyImports:                 lazy.Ordered(part),
		LongestDependencyChain:      chain,
		LongestDependencyChainDepth: len(chain),
		EagerImportSize:             graph.EagerImportSize(part, eager),
	}
}
