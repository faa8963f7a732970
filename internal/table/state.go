// Package table holds the view state of one table and the pure reducers that
// derive what is displayed from it.
package table

import "github.com/sandeepkv93/lsqtable/internal/model"

type State struct {
	Rows      []model.Row
	Columns   []string
	Hidden    []string
	Sort      *SortSpec
	FilterKey string
}

// ApplyFetch replaces the rows and merges their columns into the known order.
func (s State) ApplyFetch(rows []model.Row) State {
	s.Rows = rows
	s.Columns = MergeColumns(s.Columns, rows)
	return s
}

func (s State) VisibleColumns() []string {
	return Visible(s.Columns, s.FilterKey, s.Hidden)
}

func (s State) DisplayedRows() []model.Row {
	return Sorted(s.Rows, s.Sort)
}

func (s State) ClickSort(key string) State {
	s.Sort = NextSort(s.Sort, key)
	return s
}

func (s State) ToggleColumn(col string) State {
	s.Hidden = ToggleHidden(s.Hidden, col)
	return s
}

// MoveVisible reorders among displayed columns only.
func (s State) MoveVisible(from, to int) State {
	s.Columns = MoveColumn(s.Columns, s.VisibleColumns(), from, to)
	return s
}

func (s State) WithColumn(name string) (State, error) {
	cols, err := AddColumn(s.Columns, name)
	if err != nil {
		return s, err
	}
	s.Columns = cols
	return s, nil
}

// Selectable lists columns offered in the visibility settings: every column
// except the filtered-on one.
func (s State) Selectable() []string {
	return Visible(s.Columns, s.FilterKey, nil)
}
