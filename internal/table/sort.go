package table

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/model"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortSpec struct {
	Key       string
	Direction Direction
}

// NextSort advances the header-click cycle: a new key starts ascending, the
// same key goes ascending -> descending -> unsorted.
func NextSort(current *SortSpec, key string) *SortSpec {
	if current == nil || current.Key != key {
		return &SortSpec{Key: key, Direction: Asc}
	}
	if current.Direction == Asc {
		return &SortSpec{Key: key, Direction: Desc}
	}
	return nil
}

// Sorted returns rows ordered by spec. A nil spec keeps fetch order. The input
// slice is not modified.
func Sorted(rows []model.Row, spec *SortSpec) []model.Row {
	out := make([]model.Row, len(rows))
	copy(out, rows)
	if spec == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compareValues(sortValue(out[i], spec.Key), sortValue(out[j], spec.Key))
		if spec.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func sortValue(r model.Row, key string) string {
	if key == model.PageNameKey {
		return r.Name
	}
	return FormatValue(r.Properties[key])
}

// compareValues compares numerically when both sides are finite numbers,
// otherwise case-insensitively as strings.
func compareValues(a, b string) int {
	na, okA := parseNumber(a)
	nb, okB := parseNumber(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// parseNumber accepts finite numbers only; "NaN" and "Inf" sort as text.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
