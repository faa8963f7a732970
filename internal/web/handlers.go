package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/logseq"
	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/query"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/table.html"))

// NameColumn is how the page-name column is spelled in sort links. Forms
// post the column key itself.
const NameColumn = model.PageNameAlias

type Fetcher interface {
	Run(ctx context.Context, text string) (query.Result, error)
}

type Mutator interface {
	Apply(ctx context.Context, m mutation.Mutation) error
	CreatePage(ctx context.Context, name, filterText string) (*logseq.Page, error)
}

type ViewState interface {
	HiddenColumns(ctx context.Context, blockUUID string) []string
	SaveHiddenColumns(ctx context.Context, blockUUID string, hidden []string) error
	ColumnOrder(ctx context.Context, blockUUID string) []string
	Sort(ctx context.Context, blockUUID string) *table.SortSpec
}

// Handlers serves one table. ViewState may be nil, in which case nothing is
// remembered between requests.
type Handlers struct {
	fetcher   Fetcher
	mutator   Mutator
	viewState ViewState
	blockUUID string
	query     string
	cellWidth int
	logger    *slog.Logger
}

func NewHandlers(fetcher Fetcher, mutator Mutator, viewState ViewState, opts Options) *Handlers {
	opts = opts.normalized()
	return &Handlers{
		fetcher:   fetcher,
		mutator:   mutator,
		viewState: viewState,
		blockUUID: opts.BlockUUID,
		query:     opts.Query,
		cellWidth: opts.CellWidth,
		logger:    opts.Logger,
	}
}

type columnView struct {
	Key       string
	Title     string
	Indicator string
	SortHref  string
	Hidden    bool
}

type cellView struct {
	Key   string
	Value string
	Title string
}

type rowView struct {
	UUID  string
	Cells []cellView
}

type pageData struct {
	Query     string
	Badge     string
	Error     string
	Columns   []columnView
	Rows      []rowView
	Settings  []columnView
	CanToggle bool
}

// tableView is the result of one fetch with view state applied.
type tableView struct {
	result  query.Result
	state   table.State
	visible []string
	err     error
}

func (h *Handlers) queryText(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		return q
	}
	if q := strings.TrimSpace(r.PostFormValue("q")); q != "" {
		return q
	}
	return h.query
}

func (h *Handlers) load(r *http.Request) tableView {
	ctx := r.Context()
	text := h.queryText(r)
	var state table.State
	if h.viewState != nil && h.blockUUID != "" {
		state.Columns = h.viewState.ColumnOrder(ctx, h.blockUUID)
		state.Hidden = h.viewState.HiddenColumns(ctx, h.blockUUID)
		state.Sort = h.viewState.Sort(ctx, h.blockUUID)
	}
	if spec, ok := sortFromQuery(r.URL.Query()); ok {
		state.Sort = spec
	}

	res, err := h.fetcher.Run(ctx, text)
	state = state.ApplyFetch(res.Rows)
	if res.Filter != nil {
		state.FilterKey = res.Filter.Key
	}
	return tableView{
		result:  res,
		state:   state,
		visible: append([]string{model.PageNameKey}, state.VisibleColumns()...),
		err:     err,
	}
}

// sortFromQuery reads ?sort=&dir=. dir=none clears a stored sort.
func sortFromQuery(v url.Values) (*table.SortSpec, bool) {
	key := strings.TrimSpace(v.Get("sort"))
	if key == "" {
		return nil, false
	}
	key = columnKey(key)
	switch table.Direction(strings.ToLower(v.Get("dir"))) {
	case table.Desc:
		return &table.SortSpec{Key: key, Direction: table.Desc}, true
	case "none":
		return nil, true
	default:
		return &table.SortSpec{Key: key, Direction: table.Asc}, true
	}
}

func columnKey(s string) string {
	return model.ColumnKey(s)
}

func columnParam(key string) string {
	return model.ColumnAlias(key)
}

func columnTitle(key string) string {
	if key == model.PageNameKey {
		return "Name"
	}
	return key
}

func (h *Handlers) TablePage(w http.ResponseWriter, r *http.Request) {
	tv := h.load(r)
	text := h.queryText(r)

	data := pageData{
		Query:     text,
		Error:     r.URL.Query().Get("error"),
		CanToggle: h.viewState != nil && h.blockUUID != "",
	}
	if tv.err != nil {
		data.Error = "query failed: " + tv.err.Error()
	}
	if f := tv.result.Filter; f != nil {
		data.Badge = "filter: " + f.Key + " = " + f.Value
	}
	for _, key := range tv.visible {
		data.Columns = append(data.Columns, h.columnView(text, key, tv.state.Sort))
	}
	for _, key := range tv.state.Selectable() {
		data.Settings = append(data.Settings, columnView{
			Key:    key,
			Title:  key,
			Hidden: table.IsHidden(tv.state.Hidden, key),
		})
	}
	for _, row := range tv.state.DisplayedRows() {
		rv := rowView{UUID: row.UUID}
		for _, key := range tv.visible {
			value := table.FormatValue(row.Value(key))
			rv.Cells = append(rv.Cells, cellView{Key: key, Value: value, Title: truncate(value, h.cellWidth)})
		}
		data.Rows = append(data.Rows, rv)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render table page", "error", err)
	}
}

// columnView builds a header whose link advances the sort cycle.
func (h *Handlers) columnView(text, key string, current *table.SortSpec) columnView {
	cv := columnView{Key: key, Title: columnTitle(key)}
	if current != nil && current.Key == key {
		cv.Indicator = " ▲"
		if current.Direction == table.Desc {
			cv.Indicator = " ▼"
		}
	}
	v := url.Values{}
	if text != h.query {
		v.Set("q", text)
	}
	v.Set("sort", columnParam(key))
	if next := table.NextSort(current, key); next != nil {
		v.Set("dir", string(next.Direction))
	} else {
		v.Set("dir", "none")
	}
	cv.SortHref = "/?" + v.Encode()
	return cv
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// EditCell applies one cell edit. Failures are reported on the re-rendered
// table, which is itself a fresh fetch.
func (h *Handlers) EditCell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rowUUID := strings.TrimSpace(r.PostFormValue("row"))
	key := columnKey(strings.TrimSpace(r.PostFormValue("key")))
	if rowUUID == "" || key == "" {
		http.Error(w, "row and key are required", http.StatusBadRequest)
		return
	}
	m := mutation.MutationFor(rowUUID, key, r.PostFormValue("value"))
	if err := h.mutator.Apply(r.Context(), m); err != nil {
		h.logger.Warn("cell edit failed", "mutation", m.String(), "error", err)
		h.redirect(w, r, "edit failed: "+err.Error())
		return
	}
	h.redirect(w, r, "")
}

func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := h.mutator.CreatePage(r.Context(), r.PostFormValue("name"), h.queryText(r))
	switch {
	case errors.Is(err, mutation.ErrEmptyName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.redirect(w, r, "create page failed: "+err.Error())
	default:
		h.redirect(w, r, "")
	}
}

func (h *Handlers) ToggleHidden(w http.ResponseWriter, r *http.Request) {
	if h.viewState == nil || h.blockUUID == "" {
		http.Error(w, "no block configured for view state", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	col := strings.TrimSpace(r.PostFormValue("column"))
	if col == "" || columnKey(col) == model.PageNameKey {
		http.Error(w, "column is required", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	hidden := table.ToggleHidden(h.viewState.HiddenColumns(ctx, h.blockUUID), col)
	if err := h.viewState.SaveHiddenColumns(ctx, h.blockUUID, hidden); err != nil {
		h.logger.Error("save hidden columns", "error", err)
		http.Error(w, "could not save hidden columns", http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "")
}

type apiFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type apiRow struct {
	UUID       string         `json:"uuid"`
	Name       string         `json:"name"`
	IsPage     bool           `json:"is_page"`
	PageName   string         `json:"page_name,omitempty"`
	Properties map[string]any `json:"properties"`
}

type apiRows struct {
	Query   string     `json:"query"`
	Filter  *apiFilter `json:"filter"`
	Columns []string   `json:"columns"`
	Rows    []apiRow   `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

func (h *Handlers) Rows(w http.ResponseWriter, r *http.Request) {
	tv := h.load(r)
	resp := apiRows{
		Query:   tv.result.Query,
		Columns: tv.state.VisibleColumns(),
		Rows:    make([]apiRow, 0, len(tv.state.Rows)),
	}
	if f := tv.result.Filter; f != nil {
		resp.Filter = &apiFilter{Key: f.Key, Value: f.Value}
	}
	status := http.StatusOK
	if tv.err != nil {
		resp.Error = tv.err.Error()
		status = http.StatusBadGateway
	}
	for _, row := range tv.state.DisplayedRows() {
		resp.Rows = append(resp.Rows, apiRow{
			UUID:       row.UUID,
			Name:       row.Name,
			IsPage:     row.IsPage,
			PageName:   row.PageName,
			Properties: row.Properties,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode rows", "error", err)
	}
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, errMsg string) {
	v := url.Values{}
	if q := h.queryText(r); q != h.query {
		v.Set("q", q)
	}
	if errMsg != "" {
		v.Set("error", errMsg)
	}
	target := "/"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
