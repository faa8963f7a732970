package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lsqtable/internal/config"
	"github.com/sandeepkv93/lsqtable/internal/logseq"
	"github.com/sandeepkv93/lsqtable/internal/macro"
	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/query"
	"github.com/sandeepkv93/lsqtable/internal/storage"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Sort string
	Desc bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [QUERY]",
		Short: "Print the table for a query",
		Long: `Run a query once and print the resulting table.

Without a query, the query stored in the --block macro is used, falling back
to type::Person. Hidden columns and column order saved for --block apply.`,
		Example: `  lsqtable query type::Person
  lsqtable query '(page-property :type "Book")' -o markdown
  lsqtable query type::Person --sort age --desc -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by column (use \"@name\" for the page name)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Sort descending")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cfg := GetConfig(cmd.Context())
	logger := loggerFor(cmd)
	ctx := cmd.Context()
	client := newClient(cfg, logger)

	text := resolveQuery(ctx, client, cfg.Block, args, logger)
	res, err := query.NewRunner(client, logger).Run(ctx, text)
	if err != nil {
		return err
	}

	state := table.State{}
	if cfg.Block != "" {
		views, closeFn, err := openViewStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		state.Columns = views.ColumnOrder(ctx, cfg.Block)
		state.Hidden = views.HiddenColumns(ctx, cfg.Block)
		state.Sort = views.Sort(ctx, cfg.Block)
	}
	if opts.Sort != "" {
		dir := table.Asc
		if opts.Desc {
			dir = table.Desc
		}
		state.Sort = &table.SortSpec{Key: model.ColumnKey(opts.Sort), Direction: dir}
	}
	state = state.ApplyFetch(res.Rows)
	if res.Filter != nil {
		state.FilterKey = res.Filter.Key
	}

	cols := append([]string{model.PageNameKey}, state.VisibleColumns()...)
	return renderRows(cmd.OutOrStdout(), cfg.Output, cols, state.DisplayedRows())
}

// resolveQuery picks the query text: arguments first, then the macro in the
// owning block, then the default.
func resolveQuery(ctx context.Context, host macro.Host, block string, args []string, logger *slog.Logger) string {
	if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
		return q
	}
	if block != "" {
		b, err := host.GetBlock(ctx, block)
		switch {
		case errors.Is(err, logseq.ErrNotFound):
			logger.Warn("owning block not found", "block", block)
		case err != nil:
			logger.Warn("could not read owning block", "block", block, "error", err)
		default:
			if q, ok := macro.Parse(b.Content); ok && q != "" {
				return q
			}
		}
	}
	return macro.DefaultQuery
}

func openViewStore(cfg *config.Config, logger *slog.Logger) (*storage.ViewStore, func() error, error) {
	repo, err := storage.OpenSQLite(cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open view state: %w", err)
	}
	return storage.NewViewStore(repo, logger), repo.Close, nil
}

func columnTitle(key string) string {
	if key == model.PageNameKey {
		return "name"
	}
	return key
}

type jsonRow struct {
	UUID       string         `json:"uuid"`
	Name       string         `json:"name"`
	Page       bool           `json:"page"`
	Properties map[string]any `json:"properties"`
}

func renderRows(w io.Writer, format string, cols []string, rows []model.Row) error {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(w, rows)
	case "csv":
		newPrettyTable(w, cols, rows).RenderCSV()
		return nil
	case "md", "markdown":
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		newPrettyTable(w, cols, rows).RenderMarkdown()
		return nil
	default:
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		t := newPrettyTable(w, cols, rows)
		t.SetStyle(prettytable.StyleLight)
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
		return nil
	}
}

func newPrettyTable(w io.Writer, cols []string, rows []model.Row) prettytable.Writer {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)

	header := make(prettytable.Row, len(cols))
	for i, col := range cols {
		header[i] = columnTitle(col)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(prettytable.Row, len(cols))
		for i, col := range cols {
			row[i] = table.FormatValue(r.Value(col))
		}
		t.AppendRow(row)
	}
	return t
}

func renderJSON(w io.Writer, rows []model.Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		props := r.Properties
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, jsonRow{UUID: r.UUID, Name: r.Name, Page: r.IsPage, Properties: props})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
