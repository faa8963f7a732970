package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lsqtable/internal/macro"
	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/mutation"
)

// NewSetCommand creates the set command.
func NewSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set ROW-UUID KEY [VALUE]",
		Short: "Set or clear a property on a row",
		Long: `Write one cell. For a page row the property lands in the page's first
block. An empty or missing VALUE removes the property.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 3 {
				value = args[2]
			}
			key := args[1]
			if model.ColumnKey(key) == model.PageNameKey {
				return errors.New("use the rename command to change a page name")
			}
			return applyMutation(cmd, mutation.MutationFor(args[0], key, value))
		},
	}
}

// NewRenameCommand creates the rename command.
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename PAGE NEW-NAME...",
		Short: "Rename a page",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args[1:], " ")
			return applyMutation(cmd, mutation.MutationFor(args[0], model.PageNameKey, name))
		},
	}
}

func applyMutation(cmd *cobra.Command, m mutation.Mutation) error {
	cfg := GetConfig(cmd.Context())
	logger := loggerFor(cmd)
	coord := mutation.NewCoordinator(newClient(cfg, logger), logger)
	if err := coord.Apply(cmd.Context(), m); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), m.String())
	return nil
}

// NewNewPageCommand creates the new-page command.
func NewNewPageCommand() *cobra.Command {
	var filterText string
	cmd := &cobra.Command{
		Use:   "new-page NAME...",
		Short: "Create a page seeded from a filter",
		Long: `Create a page. Properties implied by --filter (for example type::Person)
are written to the new page so that it shows up in that table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			logger := loggerFor(cmd)
			client := newClient(cfg, logger)
			if filterText == "" && cfg.Block != "" {
				filterText = resolveQuery(cmd.Context(), client, cfg.Block, nil, logger)
			}
			coord := mutation.NewCoordinator(client, logger)
			page, err := coord.CreatePage(cmd.Context(), strings.Join(args, " "), filterText)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", page.OriginalName, page.UUID)
			return nil
		},
	}
	cmd.Flags().StringVar(&filterText, "filter", "", "Query whose property filter seeds the page")
	return cmd
}

// NewEmbedCommand creates the embed command.
func NewEmbedCommand() *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:   "embed BLOCK-UUID [QUERY]",
		Short: "Insert a table macro into a block",
		Long: `Append {{renderer :table-view, QUERY}} to a block on its own line. With
--update the query of an existing macro is rewritten instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			client := newClient(cfg, loggerFor(cmd))
			q := strings.Join(args[1:], " ")
			out := cmd.OutOrStdout()
			if update {
				changed, err := macro.UpdateQuery(cmd.Context(), client, args[0], q)
				if err != nil {
					return err
				}
				if !changed {
					_, _ = fmt.Fprintln(out, "unchanged")
					return nil
				}
				_, _ = fmt.Fprintln(out, "updated")
				return nil
			}
			content, err := macro.Embed(cmd.Context(), client, args[0], q)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "Rewrite the query of an existing macro")
	return cmd
}
