package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/model"
)

var (
	ErrColumnExists = errors.New("table: column already exists")
	ErrEmptyColumn  = errors.New("table: column name is required")
)

// MergeColumns appends the property keys of rows that are not yet in
// existing, sorted among themselves. Existing positions never move, so a
// reordered or manually added column survives a refresh.
func MergeColumns(existing []string, rows []model.Row) []string {
	known := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		known[c] = struct{}{}
	}
	var added []string
	for _, k := range model.PropertyKeys(rows) {
		if _, ok := known[k]; !ok {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	out := make([]string, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}

// Visible is columns minus the filtered-on key minus hidden ones, in order.
func Visible(columns []string, filterKey string, hidden []string) []string {
	skip := make(map[string]struct{}, len(hidden)+1)
	for _, h := range hidden {
		skip[h] = struct{}{}
	}
	if filterKey != "" {
		skip[filterKey] = struct{}{}
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := skip[c]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Move is a remove-then-insert array move.
func Move(items []string, from, to int) []string {
	out := make([]string, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{item}, out[to:]...)...)
	return out
}

// MoveColumn moves the displayed column at visible[from] to visible[to] and
// maps the result back onto the full column order. Columns that are hidden
// or filtered keep their slots.
func MoveColumn(columns, visible []string, from, to int) []string {
	if from < 0 || from >= len(visible) || to < 0 || to >= len(visible) || from == to {
		out := make([]string, len(columns))
		copy(out, columns)
		return out
	}
	reordered := Move(visible, from, to)
	shown := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		shown[c] = struct{}{}
	}
	out := make([]string, len(columns))
	next := 0
	for i, c := range columns {
		if _, ok := shown[c]; ok {
			out[i] = reordered[next]
			next++
			continue
		}
		out[i] = c
	}
	return out
}

// AddColumn appends a manual column that no row has data for yet.
func AddColumn(columns []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return columns, ErrEmptyColumn
	}
	for _, c := range columns {
		if c == name {
			return columns, fmt.Errorf("%w: %s", ErrColumnExists, name)
		}
	}
	out := make([]string, 0, len(columns)+1)
	out = append(out, columns...)
	return append(out, name), nil
}

// ToggleHidden flips col in the hidden set, preserving insertion order.
func ToggleHidden(hidden []string, col string) []string {
	out := make([]string, 0, len(hidden)+1)
	found := false
	for _, h := range hidden {
		if h == col {
			found = true
			continue
		}
		out = append(out, h)
	}
	if !found {
		out = append(out, col)
	}
	return out
}

func IsHidden(hidden []string, col string) bool {
	for _, h := range hidden {
		if h == col {
			return true
		}
	}
	return false
}
