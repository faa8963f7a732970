// Package update holds the Bubble Tea model for the table view.
package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/lsqtable/internal/filter"
	"github.com/sandeepkv93/lsqtable/internal/logseq"
	"github.com/sandeepkv93/lsqtable/internal/macro"
	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/query"
	"github.com/sandeepkv93/lsqtable/internal/scheduler"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

type Mode string

const (
	ModeBrowse    Mode = "browse"
	ModeEdit      Mode = "edit"
	ModeNewPage   Mode = "new_page"
	ModeAddColumn Mode = "add_column"
	ModePalette   Mode = "palette"
	ModeColumns   Mode = "columns"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	Body  string
	Level string
	At    time.Time
}

// Fetcher runs the table's query.
type Fetcher interface {
	Run(ctx context.Context, text string) (query.Result, error)
}

// ViewState persists per-table view settings.
type ViewState interface {
	HiddenColumns(ctx context.Context, blockUUID string) []string
	SaveHiddenColumns(ctx context.Context, blockUUID string, hidden []string) error
	ColumnOrder(ctx context.Context, blockUUID string) []string
	SaveColumnOrder(ctx context.Context, blockUUID string, columns []string) error
	Sort(ctx context.Context, blockUUID string) *table.SortSpec
	SaveSort(ctx context.Context, blockUUID string, spec *table.SortSpec) error
}

type Deps struct {
	Fetcher     Fetcher
	Coordinator *mutation.Coordinator
	// Blocks rewrites the owning block's macro; optional.
	Blocks    macro.Host
	ViewState ViewState
	Scheduler *scheduler.Engine
	Logger    *slog.Logger
}

type Model struct {
	Query       string
	Filter      *filter.Filter
	Table       table.State
	CursorRow   int
	CursorCol   int
	Mode        Mode
	Loading     bool
	QueryErr    error
	Status      StatusBar
	HelpVisible bool
	Quitting    bool
	LastError   error
	Keys        KeyMap

	Notifications []Notification

	generation   uint64
	columnCursor int
	width        int
	height       int

	cfg         RuntimeConfig
	fetcher     Fetcher
	coordinator *mutation.Coordinator
	blocks      macro.Host
	viewState   ViewState
	scheduler   *scheduler.Engine
	logger      *slog.Logger

	editInput    textinput.Model
	promptInput  textinput.Model
	commandInput textinput.Model
	loadSpinner  spinner.Model
	helpModel    help.Model
	detail       viewport.Model
}

type RowsLoadedMsg struct {
	Generation uint64
	Result     query.Result
	Err        error
}

type MutationDoneMsg struct {
	Mutation mutation.Mutation
	Err      error
}

type PageCreatedMsg struct {
	Name string
	Page *logseq.Page
	Err  error
}

type RefreshDueMsg struct {
	Event scheduler.RefreshEvent
	// viaEngine marks events read from the scheduler channel, which must be
	// re-subscribed after handling.
	viaEngine bool
}

type ViewStateLoadedMsg struct {
	Hidden  []string
	Columns []string
	Sort    *table.SortSpec
}

type QueryStoredMsg struct {
	Query   string
	Changed bool
	Err     error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(deps Deps, cfg RuntimeConfig) Model {
	cfg = cfg.normalized()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	coord := deps.Coordinator
	m := Model{
		Query:       cfg.Query,
		Filter:      filter.Parse(cfg.Query),
		Mode:        ModeBrowse,
		Keys:        DefaultKeyMap(),
		cfg:         cfg,
		fetcher:     deps.Fetcher,
		coordinator: coord,
		blocks:      deps.Blocks,
		viewState:   deps.ViewState,
		scheduler:   deps.Scheduler,
		logger:      logger,
		generation:  1,
		Loading:     deps.Fetcher != nil,
	}
	if m.Filter != nil {
		m.Table.FilterKey = m.Filter.Key
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.editInput = textinput.New()
	m.editInput.Prompt = "> "
	m.editInput.CharLimit = 1024
	m.editInput.Width = m.cfg.CellWidth

	m.promptInput = textinput.New()
	m.promptInput.Prompt = "> "
	m.promptInput.CharLimit = 256
	m.promptInput.Width = 40

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 512
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detail = viewport.New(40, 14)
}

// Generation is the number of the most recently issued fetch.
func (m Model) Generation() uint64 {
	return m.generation
}
