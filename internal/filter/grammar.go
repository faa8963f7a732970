package filter

import (
	"regexp"
	"strings"
)

// The filter grammar accepts two spellings of a single page-property predicate:
//
//	shorthand:  key::value, key:value, key：value, key：：value
//	structured: (page-property :key "value")
//
// Text starting with "(" or "[" is never treated as shorthand; "[" marks a raw
// datalog query that is passed through untouched.
var (
	shorthandPattern = regexp.MustCompile(`^([^:：]+)[:：]{1,2}(.*)$`)

	// strictPagePropertyPattern requires the ":key" form and stops the value at
	// the closing quote or parenthesis.
	strictPagePropertyPattern = regexp.MustCompile(`\(page-property\s+:(\S+)\s+(?:"([^"]*)"|([^)]*))\)`)

	// loosePagePropertyPattern tolerates a missing colon and any of the ASCII or
	// typographic quote characters around the value.
	loosePagePropertyPattern = regexp.MustCompile(`\(page-property\s+:?([^"\s':()]+)\s+["'‘“]?(.+?)["'’”]?\s*\)`)
)

const pagePropertyPrefix = "(page-property"

func isStructured(text string) bool {
	return strings.HasPrefix(text, "(") || strings.HasPrefix(text, "[")
}

// matchShorthand reports the trimmed key and value of a shorthand filter.
func matchShorthand(text string) (key, value string, ok bool) {
	if isStructured(text) {
		return "", "", false
	}
	m := shorthandPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

func matchStrictPageProperty(text string) (key, value string, ok bool) {
	m := strictPagePropertyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	value = m[2]
	if value == "" {
		value = m[3]
	}
	return m[1], value, true
}

// MatchLoosePageProperty extracts key and value from the permissive
// page-property form used when building datalog queries and seed properties.
func MatchLoosePageProperty(text string) (key, value string, ok bool) {
	m := loosePagePropertyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
