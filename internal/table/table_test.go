package table

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsWithAge(ages ...string) []model.Row {
	out := make([]model.Row, 0, len(ages))
	for _, a := range ages {
		out = append(out, model.Row{UUID: "u-" + a, Name: "n-" + a, Properties: map[string]any{"age": a}})
	}
	return out
}

func names(rows []model.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestSortNumericBeforeLexicographic(t *testing.T) {
	rows := rowsWithAge("20", "9", "100")
	asc := Sorted(rows, &SortSpec{Key: "age", Direction: Asc})
	assert.Equal(t, []string{"n-9", "n-20", "n-100"}, names(asc))

	desc := Sorted(rows, &SortSpec{Key: "age", Direction: Desc})
	assert.Equal(t, []string{"n-100", "n-20", "n-9"}, names(desc))

	assert.Equal(t, []string{"n-20", "n-9", "n-100"}, names(rows), "input must not be reordered")
}

func TestSortTreatsNaNAndInfAsText(t *testing.T) {
	rows := rowsWithAge("20", "NaN", "9", "inf", "100")
	asc := Sorted(rows, &SortSpec{Key: "age", Direction: Asc})
	assert.Equal(t, []string{"n-9", "n-20", "n-100", "n-inf", "n-NaN"}, names(asc))

	assert.Equal(t, 0, compareValues("NaN", "nan"))
	assert.Equal(t, -1, compareValues("9", "NaN"))
	assert.Equal(t, 1, compareValues("Infinity", "1e308"))
}

func TestSortCaseInsensitiveStrings(t *testing.T) {
	rows := []model.Row{{Name: "banana"}, {Name: "Apple"}, {Name: "cherry"}}
	got := Sorted(rows, &SortSpec{Key: model.PageNameKey, Direction: Asc})
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(got))
}

func TestSortMissingValuesAreEmpty(t *testing.T) {
	rows := []model.Row{
		{Name: "a", Properties: map[string]any{"k": "x"}},
		{Name: "b", Properties: map[string]any{}},
	}
	got := Sorted(rows, &SortSpec{Key: "k", Direction: Asc})
	assert.Equal(t, []string{"b", "a"}, names(got))
}

func TestSortCycle(t *testing.T) {
	rows := rowsWithAge("3", "1", "2")
	var spec *SortSpec

	spec = NextSort(spec, "age")
	require.NotNil(t, spec)
	assert.Equal(t, Asc, spec.Direction)

	spec = NextSort(spec, "age")
	require.NotNil(t, spec)
	assert.Equal(t, Desc, spec.Direction)

	spec = NextSort(spec, "age")
	assert.Nil(t, spec)
	assert.Equal(t, names(rows), names(Sorted(rows, spec)))

	spec = NextSort(&SortSpec{Key: "age", Direction: Desc}, "name")
	assert.Equal(t, &SortSpec{Key: "name", Direction: Asc}, spec)
}

func TestMergeColumnsAppendsSortedAndIsIdempotent(t *testing.T) {
	rows := []model.Row{
		{Properties: map[string]any{"zeta": 1, "alpha": 2, "kept": 3}},
	}
	merged := MergeColumns([]string{"kept", "manual"}, rows)
	assert.Equal(t, []string{"kept", "manual", "alpha", "zeta"}, merged)

	again := MergeColumns(merged, rows)
	assert.Equal(t, merged, again)

	assert.Equal(t, []string{"kept", "manual", "alpha", "zeta"}, MergeColumns(merged, nil))
}

func TestVisibleDropsFilterAndHidden(t *testing.T) {
	got := Visible([]string{"type", "age", "city", "email"}, "type", []string{"city"})
	assert.Equal(t, []string{"age", "email"}, got)
}

func TestMoveColumnKeepsHiddenSlots(t *testing.T) {
	columns := []string{"a", "b", "h", "c"}
	visible := Visible(columns, "", []string{"h"})
	got := MoveColumn(columns, visible, 0, 2)
	assert.Equal(t, []string{"b", "c", "h", "a"}, got)

	assert.Equal(t, columns, MoveColumn(columns, visible, 0, 9))
	assert.Equal(t, []string{"b", "a", "c"}, Move([]string{"a", "b", "c"}, 1, 0))
}

func TestAddColumn(t *testing.T) {
	cols, err := AddColumn([]string{"a"}, " email ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "email"}, cols)

	_, err = AddColumn(cols, "a")
	assert.True(t, errors.Is(err, ErrColumnExists))

	_, err = AddColumn(cols, "  ")
	assert.ErrorIs(t, err, ErrEmptyColumn)
}

func TestToggleHidden(t *testing.T) {
	hidden := ToggleHidden(nil, "a")
	hidden = ToggleHidden(hidden, "b")
	assert.Equal(t, []string{"a", "b"}, hidden)
	hidden = ToggleHidden(hidden, "a")
	assert.Equal(t, []string{"b"}, hidden)
	assert.True(t, IsHidden(hidden, "b"))
}

func TestStateFlow(t *testing.T) {
	s := State{FilterKey: "type", Hidden: []string{"city"}}
	s = s.ApplyFetch([]model.Row{
		{Name: "x", Properties: map[string]any{"type": "Person", "city": "Oslo", "age": "30"}},
		{Name: "y", Properties: map[string]any{"type": "Person", "age": "4"}},
	})
	assert.Equal(t, []string{"age", "city", "type"}, s.Columns)
	assert.Equal(t, []string{"age"}, s.VisibleColumns())
	assert.Equal(t, []string{"age", "city"}, s.Selectable())

	s = s.ClickSort("age")
	assert.Equal(t, []string{"y", "x"}, names(s.DisplayedRows()))

	s, err := s.WithColumn("email")
	require.NoError(t, err)
	s = s.MoveVisible(1, 0)
	assert.Equal(t, []string{"email", "age"}, s.VisibleColumns())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "20", FormatValue(20.0))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "a, b", FormatValue([]any{"a", "b"}))
	assert.Equal(t, "true", FormatValue(true))
}
