// Package filter understands the filter text a user types for a table:
// the key::value shorthand, the (page-property ...) form and raw datalog.
package filter

import (
	"fmt"
	"strings"
)

type Filter struct {
	Key   string
	Value string
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s::%s", f.Key, f.Value)
}

// Parse returns the single-property filter expressed by text, or nil when text
// is empty, raw datalog, or does not look like a filter. Malformed text is never
// an error: the table simply renders without a filter badge.
func Parse(text string) *Filter {
	q := strings.TrimSpace(text)
	if q == "" {
		return nil
	}
	if key, value, ok := matchShorthand(q); ok {
		return &Filter{Key: key, Value: value}
	}
	if key, value, ok := matchStrictPageProperty(q); ok {
		return &Filter{Key: key, Value: value}
	}
	return nil
}

// PropertiesFromFilter returns the properties a new page should start with so
// that it matches the filter it was created under.
func PropertiesFromFilter(text string) map[string]string {
	props := make(map[string]string)
	q := strings.TrimSpace(text)
	if q == "" {
		return props
	}
	if key, value, ok := matchShorthand(q); ok {
		if key != "" {
			props[key] = value
		}
		return props
	}
	if key, value, ok := MatchLoosePageProperty(q); ok {
		props[key] = value
	}
	return props
}

// QueryTextFor rewrites shorthand into the canonical page-property predicate.
// preferPageName is true whenever the effective query is a page-property query.
func QueryTextFor(text string) (query string, preferPageName bool) {
	q := strings.TrimSpace(text)
	if key, value, ok := matchShorthand(q); ok && key != "" {
		return PagePropertyQuery(key, value), true
	}
	if strings.HasPrefix(q, pagePropertyPrefix) {
		return q, true
	}
	return q, false
}

func PagePropertyQuery(key, value string) string {
	return fmt.Sprintf(`%s :%s "%s")`, pagePropertyPrefix, key, value)
}

// IsPagePropertyQuery reports whether q is in the structured page-property form.
func IsPagePropertyQuery(q string) bool {
	return strings.HasPrefix(strings.TrimSpace(q), pagePropertyPrefix)
}

// IsDatalog reports whether q is a raw datalog vector query.
func IsDatalog(q string) bool {
	return strings.HasPrefix(strings.TrimSpace(q), "[")
}
