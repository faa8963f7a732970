package update

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/lsqtable/internal/views"
)

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Sort      key.Binding
	Edit      key.Binding
	Cancel    key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Hide      key.Binding
	Columns   key.Binding
	NewPage   key.Binding
	AddCol    key.Binding
	Refresh   key.Binding
	Palette   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous row")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next row")),
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous column")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next column")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit cell")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		MoveLeft:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "move column left")),
		MoveRight: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "move column right")),
		Hide:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide column")),
		Columns:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "column settings")),
		NewPage:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new page")),
		AddCol:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add column")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Palette:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Sort, k.NewPage, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Cancel, k.Sort, k.Refresh},
		{k.MoveLeft, k.MoveRight, k.Hide, k.Columns, k.AddCol},
		{k.NewPage, k.Palette, k.Help, k.Quit},
	}
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	h := m.helpModel
	h.ShowAll = true
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: []string{
			"palette: sort <col|@name> [asc|desc], hide <col>, show <col>,",
			"         add <col>, new <page>, query <text>, refresh",
			"editing: enter/tab/arrows save the cell, esc discards",
		},
		HelpView: h.View(m.Keys),
	})
}
