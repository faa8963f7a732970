package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// View settings are persisted per owning block. Without one there is nothing
// to key them by and they live only as long as the program.

func (m Model) persistHiddenCmd() tea.Cmd {
	if m.viewState == nil || m.cfg.BlockUUID == "" {
		return nil
	}
	vs, id, hidden := m.viewState, m.cfg.BlockUUID, append([]string(nil), m.Table.Hidden...)
	logger := m.logger
	return func() tea.Msg {
		if err := vs.SaveHiddenColumns(context.Background(), id, hidden); err != nil {
			logger.Warn("persist hidden columns", "block", id, "error", err)
		}
		return nil
	}
}

func (m Model) persistColumnsCmd() tea.Cmd {
	if m.viewState == nil || m.cfg.BlockUUID == "" {
		return nil
	}
	vs, id, cols := m.viewState, m.cfg.BlockUUID, append([]string(nil), m.Table.Columns...)
	logger := m.logger
	return func() tea.Msg {
		if err := vs.SaveColumnOrder(context.Background(), id, cols); err != nil {
			logger.Warn("persist column order", "block", id, "error", err)
		}
		return nil
	}
}

func (m Model) persistSortCmd() tea.Cmd {
	if m.viewState == nil || m.cfg.BlockUUID == "" {
		return nil
	}
	vs, id := m.viewState, m.cfg.BlockUUID
	spec := m.Table.Sort
	if spec != nil {
		cp := *spec
		spec = &cp
	}
	logger := m.logger
	return func() tea.Msg {
		if err := vs.SaveSort(context.Background(), id, spec); err != nil {
			logger.Warn("persist sort", "block", id, "error", err)
		}
		return nil
	}
}
