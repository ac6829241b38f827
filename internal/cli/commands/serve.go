package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esbuild-filemap/filemap/internal/analyzer"
	"github.com/esbuild-filemap/filemap/internal/cli/ui"
	"github.com/esbuild-filemap/filemap/internal/watch"
)

var (
	serveMetafile string
	servePort     int
	serveHost     string
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live HTML report for a metafile",
		Long: `Serve the HTML report of a metafile over HTTP.

The metafile is watched for changes. When esbuild rewrites it the report
is recomputed and open browser tabs reload. If the new metafile cannot be
analyzed the last good report stays up and the error is shown in the page.

Press Ctrl+C to stop.`,
		Example: `  # Serve on the default port
  filemap serve --metafile meta.json

  # Serve on all interfaces
  filemap serve --metafile meta.json --host 0.0.0.0 --port 8080`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveMetafile, "metafile", "", "Path to the esbuild metafile (required)")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: config, then 4173)")
	cmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (default: config, then localhost)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveMetafile == "" {
		return newUsageError("serve", "--metafile is required")
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	port := env.config.Serve.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if port < 1 || port > 65535 {
		return newUsageError("serve", "--port must be between 1 and 65535, got %d", port)
	}
	host := env.config.Serve.Host
	if serveHost != "" {
		host = serveHost
	}

	a, err := analyzer.New(analyzer.Options{
		Concurrency: env.config.Analysis.Concurrency,
		CacheSize:   env.config.Analysis.CacheSize,
		Logger:      env.logger,
	})
	if err != nil {
		return err
	}

	server, err := watch.NewServer(watch.ServerConfig{
		Metafile: serveMetafile,
		Host:     host,
		Port:     port,
		Debounce: env.config.Watch.Debounce,
		Analyzer: a,
		Logger:   env.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprint(cmd.ErrOrStderr(), ui.Info(fmt.Sprintf("Serving report for %s at http://%s", serveMetafile, server.Addr()), noColor))

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() == context.Canceled {
		ui.WriteSuccess(cmd.ErrOrStderr(), "Stopped", noColor)
	}
	return nil
}
