package model

import (
	"fmt"
	"strconv"
)

// Entity is one pulled entity from the host's query engine. The HTTP API
// returns the same attribute under several spellings depending on query form
// ("uuid" vs "block/uuid", "original-name" vs "originalName"), so lookups try
// each spelling in order.
type Entity map[string]any

func (e Entity) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (e Entity) str(keys ...string) string {
	for _, k := range keys {
		v, ok := e[k]
		if !ok || v == nil {
			continue
		}
		switch typed := v.(type) {
		case string:
			if typed != "" {
				return typed
			}
		case fmt.Stringer:
			if s := typed.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func (e Entity) UUID() string {
	v, ok := e.first("uuid", "block/uuid")
	if !ok {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case map[string]any:
		// transit-encoded uuids arrive as {"$uuid": "..."}
		if s, ok := typed["$uuid"].(string); ok {
			return s
		}
	}
	return ""
}

func (e Entity) ID() int64 {
	v, ok := e.first("id", "db/id")
	if !ok {
		return 0
	}
	switch typed := v.(type) {
	case float64:
		return int64(typed)
	case int64:
		return typed
	case int:
		return int64(typed)
	case string:
		n, _ := strconv.ParseInt(typed, 10, 64)
		return n
	}
	return 0
}

func (e Entity) Content() string {
	return e.str("content", "block/content")
}

func (e Entity) OriginalName() string {
	return e.str("original-name", "block/original-name", "originalName")
}

// DisplayName is the best human name of a page entity.
func (e Entity) DisplayName() string {
	if n := e.OriginalName(); n != "" {
		return n
	}
	return e.str("name", "block/name")
}

// IsPage reports whether the entity is a page root rather than a block.
func (e Entity) IsPage() bool {
	if e.OriginalName() != "" {
		return true
	}
	return e.str("name") != "" && e.Content() == ""
}

// IsPreBlock reports whether the block carries page-level properties.
func (e Entity) IsPreBlock() bool {
	v, ok := e.first("pre-block?", "preBlock?", "block/pre-block?")
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// PageRef returns the embedded containing-page reference, if it is an object.
func (e Entity) PageRef() Entity {
	v, ok := e.first("block/page", "page")
	if !ok {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return Entity(m)
	}
	return nil
}

func (e Entity) Properties() map[string]any {
	v, ok := e.first("properties", "block/properties")
	if !ok {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
