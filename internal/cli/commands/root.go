package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
	"github.com/esbuild-filemap/filemap/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Global flags shared by every command
var (
	configPath string
	verbose    bool
	noColor    bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filemap",
		Short: "Analyze esbuild metafiles",
		Long: color.CyanString(`filemap - dependency graph analysis for esbuild bundles

filemap reads the metafile esbuild writes with --metafile and reports what
each entry point loads up front, what it defers behind dynamic imports and
how the output chunks layer on top of each other.

Features:
  • Eager and lazy import sets per entry point
  • Chunk layers with min/max bytes each lazy load adds
  • Longest static import chain per entry point
  • Bundle-wide size statistics
  • Self-contained HTML report with live reload`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./filemap.yml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewLayersCommand())
	rootCmd.AddCommand(NewEntriesCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the filemap version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
			table.AddRow("filemap version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), formatCommandError(err))
		return err
	}
	return nil
}

// formatCommandError renders err the way the failing command would
func formatCommandError(err error) string {
	var usage *usageError
	var notFound *entryNotFoundError
	var cfgErr *configError

	switch {
	case errors.As(err, &usage):
		return ui.UsageError(usage.message, usage.command, noColor)
	case errors.As(err, &notFound):
		return ui.EntryNotFoundError(notFound.entry, notFound.metafile, notFound.suggestions, noColor)
	case errors.As(err, &cfgErr):
		return ui.ConfigError(cfgErr.Error(), noColor)
	}

	if _, ok := ferrors.As(err); ok {
		return ui.AnalysisError(err, noColor)
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if noColor {
		errorColor.DisableColor()
	}
	return errorColor.Sprintf("Error: %v\n", err)
}
