package model

import (
	"errors"
	"sort"
	"strings"
)

// PageNameKey is the sort/edit key that addresses a row's name instead of a
// property. It can never collide with a real property key.
const PageNameKey = "__page_name__"

// PageNameAlias is how people type the name column in commands, flags and
// URLs. Keys starting with "@" are reserved, so it never shadows a property.
const PageNameAlias = "@name"

const (
	maxPropertyKeyLen = 100
	reservedPrefix    = "logseq."
)

var ErrMissingUUID = errors.New("model: row uuid is required")

type Row struct {
	ID           int64
	UUID         string
	Name         string
	OriginalName string
	IsPage       bool
	PageName     string
	Properties   map[string]any
}

func (r Row) Validate() error {
	if strings.TrimSpace(r.UUID) == "" {
		return ErrMissingUUID
	}
	return nil
}

// Clone copies the row and its property map so optimistic edits never touch
// rows shared with an earlier render.
func (r Row) Clone() Row {
	out := r
	out.Properties = make(map[string]any, len(r.Properties))
	for k, v := range r.Properties {
		out.Properties[k] = v
	}
	return out
}

// Value returns the raw cell value for key, resolving PageNameKey to the name.
func (r Row) Value(key string) any {
	if key == PageNameKey {
		return r.Name
	}
	return r.Properties[key]
}

func CloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// PropertyKeys returns the sorted union of property keys across rows.
func PropertyKeys(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r.Properties {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsReservedProperty reports keys that are identifiers, belong to the host's
// internal namespace, or are too long to be user properties.
func IsReservedProperty(key string) bool {
	if key == "id" || key == "uuid" {
		return true
	}
	if strings.HasPrefix(key, reservedPrefix) || strings.HasPrefix(key, "@") {
		return true
	}
	return len(key) > maxPropertyKeyLen
}

// ColumnKey resolves a typed column name to its key. Only PageNameAlias and
// PageNameKey address the name column; "name" is an ordinary property.
func ColumnKey(s string) string {
	if strings.EqualFold(s, PageNameAlias) {
		return PageNameKey
	}
	return s
}

// ColumnAlias is the inverse of ColumnKey for display in links and hints.
func ColumnAlias(key string) string {
	if key == PageNameKey {
		return PageNameAlias
	}
	return key
}
