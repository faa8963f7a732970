package cli

import (
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/query"
	"github.com/sandeepkv93/lsqtable/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve [QUERY]",
		Short: "Serve the table as a web page",
		Long: `Serve an HTML table with inline editing, page creation and column
toggles, plus a JSON endpoint at /api/rows. Every request queries Logseq
afresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			logger := loggerFor(cmd)
			client := newClient(cfg, logger)

			opts := web.Options{
				Addr:      cfg.Listen,
				BlockUUID: cfg.Block,
				Query:     resolveQuery(ctx, client, cfg.Block, args, logger),
				Logger:    logger,
			}
			if cmd.Flags().Changed("listen") {
				opts.Addr = listen
			}

			var views web.ViewState
			if cfg.Block != "" {
				store, closeFn, err := openViewStore(cfg, logger)
				if err != nil {
					return err
				}
				defer closeFn()
				views = store
			}

			h := web.NewHandlers(query.NewRunner(client, logger), mutation.NewCoordinator(client, logger), views, opts)
			return web.NewServer(h, opts).Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	return cmd
}
