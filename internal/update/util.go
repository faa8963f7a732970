package update

import (
	"sort"
	"time"

	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/table"
	"github.com/sandeepkv93/lsqtable/internal/views"
)

const maxNotifications = 20

// displayColumns is the page-name column followed by the visible property
// columns.
func (m Model) displayColumns() []string {
	return append([]string{model.PageNameKey}, m.Table.VisibleColumns()...)
}

func (m Model) currentRow() (model.Row, bool) {
	rows := m.Table.DisplayedRows()
	if m.CursorRow < 0 || m.CursorRow >= len(rows) {
		return model.Row{}, false
	}
	return rows[m.CursorRow], true
}

func (m Model) currentColumn() string {
	cols := m.displayColumns()
	if m.CursorCol < 0 || m.CursorCol >= len(cols) {
		return model.PageNameKey
	}
	return cols[m.CursorCol]
}

func (m *Model) clampCursor() {
	rows := len(m.Table.Rows)
	cols := len(m.displayColumns())
	m.CursorRow = clamp(m.CursorRow, 0, rows-1)
	m.CursorCol = clamp(m.CursorCol, 0, cols-1)
}

func (m *Model) syncDetail() {
	row, ok := m.currentRow()
	if !ok {
		m.detail.SetContent(views.RenderMarkdown(views.DetailMarkdown(views.DetailData{})))
		return
	}
	keys := make([]string, 0, len(row.Properties))
	for k := range row.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([][2]string, 0, len(keys))
	for _, k := range keys {
		props = append(props, [2]string{k, table.FormatValue(row.Properties[k])})
	}
	m.detail.SetContent(views.RenderMarkdown(views.DetailMarkdown(views.DetailData{
		Name:       row.Name,
		UUID:       row.UUID,
		IsPage:     row.IsPage,
		Properties: props,
	})))
	m.detail.GotoTop()
}

func (m *Model) notify(body, level string) {
	if body == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{Body: body, Level: level, At: time.Now().UTC()})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func columnTitle(key string) string {
	if key == model.PageNameKey {
		return "Name"
	}
	return key
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
