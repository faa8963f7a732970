// Package macro reads and writes the {{renderer :table-view, <query>}} macro
// that embeds a table in a block.
package macro

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/logseq"
)

const (
	Name         = ":table-view"
	DefaultQuery = "type::Person"
)

var (
	macroPattern   = regexp.MustCompile(`\{\{renderer\s+:table-view\s*(,[\s\S]*?)?\}\}`)
	rewritePattern = regexp.MustCompile(`(\{\{renderer\s+:table-view\s*,)([\s\S]*?)(\}\})`)
)

// Parse returns the query of the first table macro in content. Arguments are
// split on commas by the host, so they are re-joined with ", ".
func Parse(content string) (string, bool) {
	m := macroPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	args := strings.TrimPrefix(m[1], ",")
	parts := strings.Split(args, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.TrimSpace(strings.Join(parts, ", ")), true
}

// Rewrite replaces the query in the first table macro.
func Rewrite(content, query string) (string, bool) {
	loc := rewritePattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, false
	}
	out := content[:loc[3]] + " " + strings.TrimSpace(query) + content[loc[6]:]
	return out, out != content
}

// Build renders a macro for query.
func Build(query string) string {
	q := strings.TrimSpace(strings.ReplaceAll(query, "：", ":"))
	if q == "" {
		q = DefaultQuery
	}
	return fmt.Sprintf("{{renderer %s, %s}}", Name, q)
}

type Host interface {
	GetBlock(ctx context.Context, uuid string) (*logseq.Block, error)
	UpdateBlock(ctx context.Context, uuid, content string) error
}

// UpdateQuery rewrites the macro query stored in block uuid. A block without
// a macro, or one already holding query, is left alone.
func UpdateQuery(ctx context.Context, host Host, uuid, query string) (bool, error) {
	b, err := host.GetBlock(ctx, uuid)
	if err != nil {
		return false, fmt.Errorf("macro: get block: %w", err)
	}
	content, changed := Rewrite(b.Content, query)
	if !changed {
		return false, nil
	}
	if err := host.UpdateBlock(ctx, uuid, content); err != nil {
		return false, fmt.Errorf("macro: update block: %w", err)
	}
	return true, nil
}

// Embed appends a macro for query to block uuid on its own line.
func Embed(ctx context.Context, host Host, uuid, query string) (string, error) {
	b, err := host.GetBlock(ctx, uuid)
	if err != nil {
		return "", fmt.Errorf("macro: get block: %w", err)
	}
	content := Build(query)
	if strings.TrimSpace(b.Content) != "" {
		content = strings.TrimRight(b.Content, "\n") + "\n" + content
	}
	if err := host.UpdateBlock(ctx, uuid, content); err != nil {
		return "", fmt.Errorf("macro: update block: %w", err)
	}
	return content, nil
}
