package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/table"
	"github.com/sandeepkv93/lsqtable/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, 4)
	if m.viewState != nil && m.cfg.BlockUUID != "" {
		cmds = append(cmds, loadViewStateCmd(m.viewState, m.cfg.BlockUUID))
	}
	if m.fetcher != nil {
		cmds = append(cmds, fetchRowsCmd(m.fetcher, m.generation, m.Query, m.cfg.RequestTimeout), m.loadSpinner.Tick)
	}
	if m.scheduler != nil {
		cmds = append(cmds, waitForRefreshCmd(m.scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.detail.Height = max(6, typed.Height-12)
		return m, nil
	case tea.KeyMsg:
		if typed.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModeEdit:
			return m.handleEditKey(typed)
		case ModeNewPage, ModeAddColumn:
			return m.handlePromptKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		case ModeColumns:
			return m.handleColumnsKey(typed)
		}
		return m.handleBrowseKey(typed)
	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.loadSpinner, cmd = m.loadSpinner.Update(typed)
		return m, cmd
	case RowsLoadedMsg:
		return m.onRowsLoaded(typed), nil
	case ViewStateLoadedMsg:
		m.Table.Hidden = append([]string(nil), typed.Hidden...)
		m.Table.Columns = mergeStoredOrder(typed.Columns, m.Table.Columns)
		if typed.Sort != nil {
			m.Table.Sort = typed.Sort
		}
		m.clampCursor()
		m.syncDetail()
		return m, nil
	case MutationDoneMsg:
		return m.onMutationDone(typed)
	case tea.BlurMsg:
		if m.Mode == ModeEdit {
			return m.commitEdit()
		}
		return m, nil
	case PageCreatedMsg:
		return m.onPageCreated(typed)
	case RefreshDueMsg:
		m.logger.Debug("refresh due", "id", typed.Event.ID, "reason", typed.Event.Reason)
		next, cmd := m.refresh()
		if typed.viaEngine && m.scheduler != nil {
			cmd = tea.Batch(cmd, waitForRefreshCmd(m.scheduler.C()))
		}
		return next, cmd
	case QueryStoredMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("query not saved to block: %v", typed.Err), IsError: true}
			return m, nil
		}
		if typed.Changed {
			m.Status = StatusBar{Text: "query saved to block"}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify(typed.Err.Error(), "error")
		}
		return m, nil
	}
	return m, nil
}

// refresh issues a fetch under a new generation. Results of older
// generations are dropped when they arrive, so the last issued fetch wins.
func (m Model) refresh() (Model, tea.Cmd) {
	if m.fetcher == nil {
		return m, nil
	}
	m.generation++
	cmd := fetchRowsCmd(m.fetcher, m.generation, m.Query, m.cfg.RequestTimeout)
	if !m.Loading {
		cmd = tea.Batch(cmd, m.loadSpinner.Tick)
	}
	m.Loading = true
	return m, cmd
}

func (m Model) onRowsLoaded(msg RowsLoadedMsg) Model {
	if msg.Generation != m.generation {
		m.logger.Debug("dropping stale rows", "generation", msg.Generation, "current", m.generation)
		return m
	}
	m.Loading = false
	m.QueryErr = msg.Err
	m.Filter = msg.Result.Filter
	m.Table.FilterKey = ""
	if m.Filter != nil {
		m.Table.FilterKey = m.Filter.Key
	}
	m.Table = m.Table.ApplyFetch(msg.Result.Rows)
	m.clampCursor()
	m.syncDetail()
	return m
}

func (m Model) onMutationDone(msg MutationDoneMsg) (Model, tea.Cmd) {
	m.coordinator.Done(msg.Mutation, msg.Err)
	if msg.Err == nil {
		m.Status = StatusBar{Text: "saved: " + msg.Mutation.String()}
		return m, nil
	}
	m.LastError = msg.Err
	m.Status = StatusBar{Text: fmt.Sprintf("save failed: %v", msg.Err), IsError: true}
	m.notify(m.Status.Text, "error")
	next, cmd := m.refresh()
	next.coordinator.Acknowledge()
	return next, cmd
}

func (m Model) onPageCreated(msg PageCreatedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("create page failed: %v", msg.Err), IsError: true}
		m.notify(m.Status.Text, "error")
		return m.refresh()
	}
	m.Status = StatusBar{Text: fmt.Sprintf("created page %q", msg.Name)}
	return m, delayedRefreshCmd(m.scheduler, m.cfg.RefreshDelay)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case key.Matches(msg, m.Keys.Up):
		m.CursorRow--
		m.clampCursor()
		m.syncDetail()
	case key.Matches(msg, m.Keys.Down):
		m.CursorRow++
		m.clampCursor()
		m.syncDetail()
	case key.Matches(msg, m.Keys.Left):
		m.CursorCol--
		m.clampCursor()
	case key.Matches(msg, m.Keys.Right):
		m.CursorCol++
		m.clampCursor()
	case key.Matches(msg, m.Keys.Sort):
		m.Table = m.Table.ClickSort(m.currentColumn())
		m.syncDetail()
		return m, m.persistSortCmd()
	case key.Matches(msg, m.Keys.Edit):
		return m.beginEdit()
	case key.Matches(msg, m.Keys.MoveLeft):
		return m.moveColumn(-1)
	case key.Matches(msg, m.Keys.MoveRight):
		return m.moveColumn(1)
	case key.Matches(msg, m.Keys.Hide):
		col := m.currentColumn()
		if m.CursorCol == 0 {
			m.Status = StatusBar{Text: "the name column cannot be hidden", IsError: true}
			return m, nil
		}
		m.Table = m.Table.ToggleColumn(col)
		m.clampCursor()
		m.Status = StatusBar{Text: "hidden column " + col}
		return m, m.persistHiddenCmd()
	case key.Matches(msg, m.Keys.Columns):
		m.Mode = ModeColumns
		m.columnCursor = 0
	case key.Matches(msg, m.Keys.NewPage):
		return m.openPrompt(ModeNewPage, "page name")
	case key.Matches(msg, m.Keys.AddCol):
		return m.openPrompt(ModeAddColumn, "column name")
	case key.Matches(msg, m.Keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.Keys.Palette):
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	}
	return m, nil
}

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	if m.coordinator == nil {
		m.Status = StatusBar{Text: "table is read-only", IsError: true}
		return m, nil
	}
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	e := m.coordinator.Begin(row, m.currentColumn())
	m.editInput.SetValue(e.Previous)
	m.editInput.CursorEnd()
	m.editInput.Focus()
	m.Mode = ModeEdit
	return m, textinput.Blink
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.coordinator.Cancel()
		m.editInput.Blur()
		m.Mode = ModeBrowse
		return m, nil
	case tea.KeyEnter:
		return m.commitEdit()
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		// Leaving the cell keeps what was typed, the same as Enter.
		next, cmd := m.commitEdit()
		switch msg.Type {
		case tea.KeyTab:
			next.CursorCol++
		case tea.KeyShiftTab:
			next.CursorCol--
		case tea.KeyUp:
			next.CursorRow--
		case tea.KeyDown:
			next.CursorRow++
		}
		next.clampCursor()
		next.syncDetail()
		return next, cmd
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m Model) commitEdit() (Model, tea.Cmd) {
	value := m.editInput.Value()
	m.editInput.Blur()
	m.Mode = ModeBrowse
	rows, mut, changed, err := m.coordinator.Commit(m.Table.Rows, value)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if !changed {
		return m, nil
	}
	m.Table.Rows = rows
	m.syncDetail()
	m.Status = StatusBar{Text: "saving..."}
	return m, applyMutationCmd(m.coordinator, mut, m.cfg.RequestTimeout)
}

func (m Model) openPrompt(mode Mode, placeholder string) (tea.Model, tea.Cmd) {
	m.Mode = mode
	m.promptInput.SetValue("")
	m.promptInput.Placeholder = placeholder
	m.promptInput.Focus()
	return m, textinput.Blink
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.promptInput.Blur()
		m.Mode = ModeBrowse
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.promptInput.Value())
		mode := m.Mode
		m.promptInput.Blur()
		m.Mode = ModeBrowse
		if mode == ModeNewPage {
			return m.createPage(value)
		}
		return m.addColumn(value)
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m Model) createPage(name string) (Model, tea.Cmd) {
	if m.coordinator == nil {
		m.Status = StatusBar{Text: "table is read-only", IsError: true}
		return m, nil
	}
	if name == "" {
		m.Status = StatusBar{Text: mutation.ErrEmptyName.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("creating page %q...", name)}
	return m, createPageCmd(m.coordinator, name, m.Query, m.cfg.RequestTimeout)
}

func (m Model) addColumn(name string) (Model, tea.Cmd) {
	next, err := m.Table.WithColumn(name)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Table = next
	m.Status = StatusBar{Text: "added column " + strings.TrimSpace(name)}
	return m, m.persistColumnsCmd()
}

func (m Model) moveColumn(delta int) (tea.Model, tea.Cmd) {
	if m.CursorCol == 0 {
		m.Status = StatusBar{Text: "the name column cannot be moved", IsError: true}
		return m, nil
	}
	from := m.CursorCol - 1
	to := from + delta
	if to < 0 || to >= len(m.Table.VisibleColumns()) {
		return m, nil
	}
	m.Table = m.Table.MoveVisible(from, to)
	m.CursorCol += delta
	return m, m.persistColumnsCmd()
}

func (m Model) handleColumnsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.Table.Selectable()
	switch msg.String() {
	case "esc", "c", "q":
		m.Mode = ModeBrowse
		m.clampCursor()
	case "j", "down":
		m.columnCursor = clamp(m.columnCursor+1, 0, len(cols)-1)
	case "k", "up":
		m.columnCursor = clamp(m.columnCursor-1, 0, len(cols)-1)
	case " ", "enter", "x":
		if len(cols) == 0 {
			return m, nil
		}
		m.Table = m.Table.ToggleColumn(cols[m.columnCursor])
		return m, m.persistHiddenCmd()
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	cols := m.displayColumns()
	colData := make([]views.ColumnData, len(cols))
	for i, c := range cols {
		colData[i] = views.ColumnData{Title: columnTitle(c)}
		if m.Table.Sort != nil && m.Table.Sort.Key == c {
			colData[i].Sort = string(m.Table.Sort.Direction)
		}
	}
	rows := m.Table.DisplayedRows()
	cells := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = table.FormatValue(r.Value(c))
		}
		cells[i] = line
	}
	empty := "No rows"
	if m.Loading {
		empty = m.loadSpinner.View() + " loading"
	}
	left := views.RenderTable(views.TableData{
		Columns:   colData,
		Rows:      cells,
		CursorRow: m.CursorRow,
		CursorCol: m.CursorCol,
		Editing:   m.Mode == ModeEdit,
		EditView:  m.editInput.View(),
		EmptyText: empty,
		CellWidth: m.cfg.CellWidth,
	})
	if m.QueryErr != nil {
		left += "\n" + views.RenderQueryError(m.QueryErr.Error())
	}

	right := m.detail.View()
	switch m.Mode {
	case ModePalette:
		right = views.RenderCommandPalette(true, m.commandInput.View())
	case ModeNewPage:
		right = views.RenderPrompt("new page", m.promptInput.View())
	case ModeAddColumn:
		right = views.RenderPrompt("add column", m.promptInput.View())
	case ModeColumns:
		right = views.RenderColumnSettings(m.columnSettings())
	}
	if help := m.renderHelpIfVisible(); help != "" {
		right = help
	}

	header := "lsqtable"
	if m.Query != "" {
		header += " | " + m.Query
	}
	if m.Loading {
		header += " " + m.loadSpinner.View()
	}
	badge := ""
	if m.Filter != nil {
		badge = views.RenderFilterBadge(m.Filter.Key, m.Filter.Value)
	}
	notification := ""
	if n := len(m.Notifications); n > 0 {
		last := m.Notifications[n-1]
		notification = views.RenderNotification(last.Level, last.Body)
	}
	return views.RenderApp(views.AppData{
		Header:       header,
		Badge:        badge,
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   m.Status.Text,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer:       m.helpModel.View(m.Keys),
	})
}

func (m Model) columnSettings() []views.ColumnSetting {
	cols := m.Table.Selectable()
	out := make([]views.ColumnSetting, len(cols))
	for i, c := range cols {
		out[i] = views.ColumnSetting{Name: c, Hidden: table.IsHidden(m.Table.Hidden, c), Selected: i == m.columnCursor}
	}
	return out
}

// mergeStoredOrder puts the stored order first and keeps current columns
// the store did not know about after it.
func mergeStoredOrder(stored, current []string) []string {
	out := append([]string(nil), stored...)
	for _, c := range current {
		if !contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
