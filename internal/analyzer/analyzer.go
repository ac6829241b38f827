// Package analyzer ties metafile parsing, graph analysis and size
// aggregation together and caches results by document content.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/esbuild-filemap/filemap/internal/cache"
	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
	"github.com/esbuild-filemap/filemap/internal/graph"
	"github.com/esbuild-filemap/filemap/internal/metafile"
	"github.com/esbuild-filemap/filemap/internal/stats"
)

// Options configures an Analyzer
type Options struct {
	Concurrency int
	CacheSize   int
	Logger      *zap.Logger
}

// Result is everything derived from one metafile
type Result struct {
	Metafile *metafile.Metafile
	Stats    *stats.BundleStats
	// Layers is the chunk-layer forest of the outputs part, one tree per
	// output entry point
	Layers []*graph.ChunkLayer
	// Hash is the SHA-256 of the analyzed document
	Hash string
}

// Analyzer runs the full analysis pipeline
type Analyzer struct {
	opts    Options
	logger  *zap.Logger
	hasher  *cache.FileHasher
	results *cache.ResultCache[*Result]
}

// New creates an analyzer
func New(opts Options) (*Analyzer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results, err := cache.NewResultCache[*Result](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		opts:    opts,
		logger:  logger,
		hasher:  cache.NewFileHasher(),
		results: results,
	}, nil
}

// AnalyzeFile reads and analyzes the metafile at path
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.NewUnreadableFile(path, err)
	}

	result, err := a.AnalyzeBytes(ctx, data)
	if err != nil {
		if analysisErr, ok := ferrors.As(err); ok && analysisErr.File == "" {
			analysisErr.WithFile(path)
		}
		return nil, err
	}
	return result, nil
}

// AnalyzeBytes parses and analyzes a metafile document. Identical documents
// are served from the cache.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte) (*Result, error) {
	hash := a.hasher.HashContent(data)
	if cached, ok := a.results.Get(hash); ok {
		a.logger.Debug("analysis cache hit", zap.String("hash", hash[:12]))
		return cached, nil
	}

	meta, err := metafile.Parse(data)
	if err != nil {
		return nil, err
	}

	result, err := a.Analyze(ctx, meta)
	if err != nil {
		return nil, err
	}
	result.Hash = hash

	a.results.Set(hash, result)
	return result, nil
}

// Analyze computes stats and chunk layers for an already parsed metafile
func (a *Analyzer) Analyze(ctx context.Context, meta *metafile.Metafile) (*Result, error) {
	start := time.Now()

	bundle, err := stats.Compute(ctx, meta, stats.Options{
		Concurrency: a.opts.Concurrency,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze metafile: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layers := graph.AnalyzeChunkLayers(meta.Outputs)

	a.logger.Debug("analysis complete",
		zap.Int("inputs", meta.Inputs.Len()),
		zap.Int("outputs", meta.Outputs.Len()),
		zap.Int("entries", len(bundle.EntryStats)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Result{
		Metafile: meta,
		Stats:    bundle,
		Layers:   layers,
	}, nil
}

// CacheStats reports how often results were served from the cache
func (a *Analyzer) CacheStats() cache.Stats {
	return a.results.Stats()
}

// Invalidate drops every cached result
func (a *Analyzer) Invalidate() {
	a.results.InvalidateAll()
}
