// Package cli provides the lsqtable command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lsqtable/internal/config"
	"github.com/sandeepkv93/lsqtable/internal/logging"
	"github.com/sandeepkv93/lsqtable/internal/logseq"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile  string
		closeLog = func() error { return nil }
	)

	rootCmd := &cobra.Command{
		Use:   "lsqtable",
		Short: "Editable tables over Logseq queries",
		Long: `lsqtable renders the pages and blocks matching a Logseq query as a
sortable, editable table. It talks to a running Logseq through its HTTP API.

The query can be a property shorthand (type::Person), a simple query such as
(page-property :type "Person"), or a datalog vector.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// The TUI owns the terminal, so it only logs to a file.
			var fallback io.Writer = cmd.ErrOrStderr()
			if cmd.Name() == "tui" {
				fallback = nil
			}
			logger, closer, err := logging.New(logging.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				File:   cfg.LogFile,
			}, fallback)
			if err != nil {
				return err
			}
			closeLog = closer
			if used := config.FileUsed(); used != "" {
				logger.Debug("using config file", "path", used)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return closeLog()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	def := config.Defaults()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./lsqtable.yaml)")
	pf.String("api-url", def.APIURL, "Logseq HTTP API server")
	pf.String("api-token", "", "Logseq HTTP API authorization token")
	pf.String("state-path", def.StatePath, "Path to the view-state database")
	pf.String("block", "", "UUID of the block that owns the table")
	pf.String("watch-dir", "", "Graph directory to watch for page changes")
	pf.Duration("refresh-delay", def.RefreshDelay, "Delay before re-querying after a page is created")
	pf.Duration("request-timeout", def.RequestTimeout, "Timeout for each API request")
	pf.String("log-level", def.LogLevel, "Log level (debug|info|warn|error)")
	pf.String("log-format", def.LogFormat, "Log format (text|json)")
	pf.String("log-file", "", "Write logs to this file")
	pf.StringP("output", "o", def.Output, "Output format (text|markdown|json|csv)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		NewVersionCommand(),
		NewQueryCommand(),
		NewTUICommand(),
		NewSetCommand(),
		NewRenameCommand(),
		NewNewPageCommand(),
		NewEmbedCommand(),
		NewServeCommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg := config.Defaults()
	return &cfg
}

func loggerFor(cmd *cobra.Command) *slog.Logger {
	return logging.FromContext(cmd.Context())
}

func newClient(cfg *config.Config, logger *slog.Logger) *logseq.Client {
	return logseq.New(cfg.APIURL, cfg.APIToken,
		logseq.WithTimeout(cfg.RequestTimeout),
		logseq.WithLogger(logger),
	)
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lsqtable v%s (%s)\n", Version, GitCommit)
		},
	}
}
