package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/lsqtable/internal/commands"
	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case tea.KeyEnter:
		raw := m.commandInput.Value()
		m.closePalette()
		return m.executePaletteCommand(raw)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m *Model) closePalette() {
	m.Mode = ModeBrowse
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			if a.Column != model.PageNameKey && !contains(m.Table.Columns, a.Column) {
				return commands.Result{}, unknownColumn(a.Column)
			}
			m.Table.Sort = &table.SortSpec{Key: a.Column, Direction: a.Direction}
			next = m.persistSortCmd()
			return commands.Result{Message: fmt.Sprintf("sorted by %s %s", columnTitle(a.Column), a.Direction)}, nil
		},
		Hide: func(a commands.ColumnArgs) (commands.Result, error) {
			if !contains(m.Table.Columns, a.Column) {
				return commands.Result{}, unknownColumn(a.Column)
			}
			if !table.IsHidden(m.Table.Hidden, a.Column) {
				m.Table = m.Table.ToggleColumn(a.Column)
				next = m.persistHiddenCmd()
			}
			m.clampCursor()
			return commands.Result{Message: "hidden column " + a.Column}, nil
		},
		Show: func(a commands.ColumnArgs) (commands.Result, error) {
			if !table.IsHidden(m.Table.Hidden, a.Column) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("column %s is not hidden", a.Column)}
			}
			m.Table = m.Table.ToggleColumn(a.Column)
			next = m.persistHiddenCmd()
			return commands.Result{Message: "showing column " + a.Column}, nil
		},
		Add: func(a commands.ColumnArgs) (commands.Result, error) {
			updated, err := m.Table.WithColumn(a.Column)
			if err != nil {
				if errors.Is(err, table.ErrColumnExists) || errors.Is(err, table.ErrEmptyColumn) {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
				}
				return commands.Result{}, err
			}
			m.Table = updated
			next = m.persistColumnsCmd()
			return commands.Result{Message: "added column " + a.Column}, nil
		},
		New: func(a commands.NewArgs) (commands.Result, error) {
			var created Model
			created, next = m.createPage(a.Name)
			m = created
			return commands.Result{Message: m.Status.Text}, nil
		},
		Query: func(a commands.QueryArgs) (commands.Result, error) {
			m.Query = strings.TrimSpace(a.Text)
			var refresh tea.Cmd
			m, refresh = m.refresh()
			next = refresh
			if m.blocks != nil && m.cfg.BlockUUID != "" {
				next = tea.Batch(refresh, storeQueryCmd(m.blocks, m.cfg.BlockUUID, m.Query, m.cfg.RequestTimeout))
			}
			return commands.Result{Message: "query: " + m.Query}, nil
		},
		Refresh: func() (commands.Result, error) {
			m, next = m.refresh()
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify(err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, next
}

func unknownColumn(col string) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown column: %s", col)}
}
