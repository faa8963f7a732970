package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/query"
	"github.com/sandeepkv93/lsqtable/internal/scheduler"
	"github.com/sandeepkv93/lsqtable/internal/update"
	"github.com/sandeepkv93/lsqtable/internal/watch"
)

// NewTUICommand creates the interactive table command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [QUERY]",
		Short: "Browse and edit a query as an interactive table",
		Long: `Open the interactive table. Press ? for key bindings and / for the
command palette.

With --block the view state (hidden columns, column order, sort) is saved
per block and palette query changes are written back to the block macro.
With --watch-dir the table refreshes when page files change.`,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	logger := loggerFor(cmd)
	client := newClient(cfg, logger)

	runtime := update.DefaultRuntimeConfig()
	runtime.BlockUUID = cfg.Block
	runtime.Query = resolveQuery(ctx, client, cfg.Block, args, logger)
	runtime.RefreshDelay = cfg.RefreshDelay
	runtime.RequestTimeout = cfg.RequestTimeout

	engine := scheduler.NewEngine(runtime.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	deps := update.Deps{
		Fetcher:     query.NewRunner(client, logger),
		Coordinator: mutation.NewCoordinator(client, logger),
		Blocks:      client,
		Scheduler:   engine,
		Logger:      logger,
	}

	if cfg.Block != "" {
		views, closeFn, err := openViewStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		deps.ViewState = views
	}

	if cfg.WatchDir != "" {
		w, err := watch.New(cfg.WatchDir, engine, watch.DefaultDelay, logger)
		switch {
		case errors.Is(err, watch.ErrNoGraphDirs):
			logger.Warn("not watching graph", "error", err)
		case err != nil:
			return err
		default:
			go w.Run(ctx)
		}
	}

	program := tea.NewProgram(update.NewModel(deps, runtime), tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
