package views

import (
	"strings"
	"testing"
)

func TestRenderTableShowsHeadersAndSortIndicator(t *testing.T) {
	out := RenderTable(TableData{
		Columns: []ColumnData{{Title: "Name", Sort: "asc"}, {Title: "age"}},
		Rows:    [][]string{{"Ada", "36"}, {"Grace", ""}},
	})
	for _, want := range []string{"Name ▲", "age", "Ada", "Grace", "36"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output:\n%s", want, out)
		}
	}
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable(TableData{Columns: []ColumnData{{Title: "Name"}}, EmptyText: "nothing matched"})
	if !strings.Contains(out, "nothing matched") {
		t.Fatalf("expected empty text, got:\n%s", out)
	}
}

func TestRenderTableEditingReplacesCell(t *testing.T) {
	out := RenderTable(TableData{
		Columns:  []ColumnData{{Title: "Name"}},
		Rows:     [][]string{{"Ada"}},
		Editing:  true,
		EditView: "> Ada L",
	})
	if !strings.Contains(out, "> Ada L") {
		t.Fatalf("expected edit view in output:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo world", 5); got != "héll…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Truncate("a\nb", 10); got != "a b" {
		t.Fatalf("expected flattened newline, got %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestRenderFilterBadge(t *testing.T) {
	if RenderFilterBadge("", "x") != "" {
		t.Fatal("expected no badge without a key")
	}
	if got := RenderFilterBadge("type", "Person"); got != "filter: type = Person" {
		t.Fatalf("unexpected badge: %q", got)
	}
}

func TestDetailMarkdown(t *testing.T) {
	md := DetailMarkdown(DetailData{
		Name:       "Ada",
		UUID:       "p-1",
		IsPage:     true,
		Properties: [][2]string{{"type", "Person"}, {"tags", "a|b"}},
	})
	if !strings.Contains(md, "## Ada") || !strings.Contains(md, "| type | Person |") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if !strings.Contains(md, `a\|b`) {
		t.Fatalf("expected pipe escaped:\n%s", md)
	}
	if DetailMarkdown(DetailData{}) != "_No row selected_" {
		t.Fatal("expected placeholder for empty detail")
	}
}

func TestRenderColumnSettings(t *testing.T) {
	out := RenderColumnSettings([]ColumnSetting{{Name: "age", Hidden: true, Selected: true}, {Name: "type"}})
	if !strings.Contains(out, "> [ ] age") || !strings.Contains(out, "  [x] type") {
		t.Fatalf("unexpected settings output:\n%s", out)
	}
}
