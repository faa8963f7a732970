// Package query runs a table's filter text against the host and normalizes the
// answer into rows.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/filter"
	"github.com/sandeepkv93/lsqtable/internal/model"
)

// Host is the part of the host API the runner needs.
type Host interface {
	DatascriptQuery(ctx context.Context, query string) ([]any, error)
	SimpleQuery(ctx context.Context, query string) ([]any, error)
}

type Result struct {
	Rows           []model.Row
	Query          string
	Filter         *filter.Filter
	PreferPageName bool
}

type Runner struct {
	host   Host
	logger *slog.Logger
}

func NewRunner(host Host, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{host: host, logger: logger}
}

// Run executes text and returns normalized rows. On host failure it returns an
// empty row set together with the error so callers can show it inline.
func (r *Runner) Run(ctx context.Context, text string) (Result, error) {
	res := Result{Rows: []model.Row{}, Filter: filter.Parse(text)}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}
	res.Query, res.PreferPageName = filter.QueryTextFor(text)

	raw, err := r.fetch(ctx, res.Query)
	if err != nil {
		r.logger.Error("query failed", "query", res.Query, "error", err)
		return res, fmt.Errorf("query: %w", err)
	}
	res.Rows = model.Normalize(raw, res.PreferPageName)
	r.logger.Debug("query done", "query", res.Query, "raw", len(raw), "rows", len(res.Rows))
	return res, nil
}

func (r *Runner) fetch(ctx context.Context, q string) ([]any, error) {
	if filter.IsPagePropertyQuery(q) {
		if key, value, ok := filter.MatchLoosePageProperty(q); ok {
			if raw := r.strictPageProperty(ctx, key, value); len(raw) > 0 {
				return raw, nil
			}
		}
	}
	if filter.IsDatalog(q) {
		return r.host.DatascriptQuery(ctx, q)
	}
	return r.host.SimpleQuery(ctx, q)
}

// strictPageProperty asks for [block page] pairs whose properties hold value
// under key, first as a keyword key and then as a string key (non-ASCII keys
// are stored as strings). Failures here only mean "fall back".
func (r *Runner) strictPageProperty(ctx context.Context, key, value string) []any {
	for _, q := range []string{
		StrictPagePropertyQuery(":"+key, value),
		StrictPagePropertyQuery(quote(key), value),
	} {
		raw, err := r.host.DatascriptQuery(ctx, q)
		if err != nil {
			r.logger.Warn("strict page-property query failed", "query", q, "error", err)
			continue
		}
		if len(raw) > 0 {
			return raw
		}
	}
	return nil
}

// StrictPagePropertyQuery builds the datalog query pulling each matching block
// together with its page. keyExpr is either a keyword (":type") or a quoted
// string.
func StrictPagePropertyQuery(keyExpr, value string) string {
	return fmt.Sprintf(
		`[:find (pull ?b [*]) (pull ?p [*]) :where [?b :block/properties ?props] [(get ?props %s) ?v] [(= ?v %s)] [?b :block/page ?p]]`,
		keyExpr, quote(value),
	)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
