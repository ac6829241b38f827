package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/esbuild-filemap/filemap/internal/analyzer"
	"github.com/esbuild-filemap/filemap/internal/cli/config"
	"github.com/esbuild-filemap/filemap/internal/logging"
)

// commandEnv is what every analysis command needs before it starts
type commandEnv struct {
	config *config.Config
	logger *zap.Logger
}

func loadEnv() (*commandEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, &configError{err: err}
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}

	return &commandEnv{config: cfg, logger: logger}, nil
}

// analyze runs the full pipeline on metafile
func (e *commandEnv) analyze(ctx context.Context, metafile string, concurrency int) (*analyzer.Result, error) {
	a, err := analyzer.New(analyzer.Options{
		Concurrency: concurrency,
		CacheSize:   e.config.Analysis.CacheSize,
		Logger:      e.logger,
	})
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFile(ctx, metafile)
}

func (e *commandEnv) close() {
	_ = e.logger.Sync()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeFile writes data to path, creating parent directories as needed
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
