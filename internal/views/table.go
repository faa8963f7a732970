package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const defaultCellWidth = 24

type ColumnData struct {
	Title string
	// Sort is "asc", "desc" or empty.
	Sort string
}

type TableData struct {
	Columns   []ColumnData
	Rows      [][]string
	CursorRow int
	CursorCol int
	// EditView replaces the cell under the cursor while editing.
	EditView  string
	Editing   bool
	EmptyText string
	CellWidth int
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Padding(0, 1)
	cursorRowStyle   = cellStyle.Foreground(lipgloss.Color("15"))
	cursorCellStyle  = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	editCellStyle    = cellStyle.Foreground(lipgloss.Color("11"))
	borderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderTable(data TableData) string {
	width := data.CellWidth
	if width <= 0 {
		width = defaultCellWidth
	}

	headers := make([]string, len(data.Columns))
	for i, c := range data.Columns {
		headers[i] = c.Title + sortIndicator(c.Sort)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)

	if len(data.Rows) == 0 {
		empty := data.EmptyText
		if empty == "" {
			empty = "No rows"
		}
		return t.Render() + "\n" + mutedStyle.Render(empty)
	}

	for r, row := range data.Rows {
		cells := make([]string, len(row))
		for c, v := range row {
			if data.Editing && r == data.CursorRow && c == data.CursorCol {
				cells[c] = data.EditView
				continue
			}
			cells[c] = Truncate(v, width)
		}
		t.Row(cells...)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return tableHeaderStyle
		case row == data.CursorRow && col == data.CursorCol && data.Editing:
			return editCellStyle
		case row == data.CursorRow && col == data.CursorCol:
			return cursorCellStyle
		case row == data.CursorRow:
			return cursorRowStyle
		default:
			return cellStyle
		}
	})
	return t.Render()
}

func sortIndicator(dir string) string {
	switch dir {
	case "asc":
		return " ▲"
	case "desc":
		return " ▼"
	default:
		return ""
	}
}

// Truncate shortens s to width runes with a trailing ellipsis. Newlines are
// flattened so a cell stays on one line.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
