package model

// ResultItem is one element of a host query result. The engine returns
// [block page] tuples for pull-pair queries, [entity] singletons for single
// pulls, and bare objects for simple queries.
type ResultItem interface {
	resolve() (block, page Entity, ok bool)
}

type PairItem struct {
	Block Entity
	Page  Entity
}

type SingleItem struct {
	Block Entity
}

type BareItem struct {
	Block Entity
}

// EmptyItem stands for an empty tuple or a value that is not an entity.
type EmptyItem struct{}

func (p PairItem) resolve() (Entity, Entity, bool) {
	if p.Block == nil {
		return nil, nil, false
	}
	return p.Block, p.Page, true
}

func (s SingleItem) resolve() (Entity, Entity, bool) {
	if s.Block == nil {
		return nil, nil, false
	}
	if ref := s.Block.PageRef(); ref != nil {
		return s.Block, ref, true
	}
	return s.Block, s.Block, true
}

func (b BareItem) resolve() (Entity, Entity, bool) {
	if b.Block == nil {
		return nil, nil, false
	}
	return b.Block, b.Block.PageRef(), true
}

func (EmptyItem) resolve() (Entity, Entity, bool) {
	return nil, nil, false
}

// DecodeItem classifies one raw JSON-decoded result element.
func DecodeItem(raw any) ResultItem {
	switch typed := raw.(type) {
	case []any:
		switch {
		case len(typed) >= 2:
			return PairItem{Block: asEntity(typed[0]), Page: asEntity(typed[1])}
		case len(typed) == 1:
			return SingleItem{Block: asEntity(typed[0])}
		default:
			return EmptyItem{}
		}
	case map[string]any:
		return BareItem{Block: Entity(typed)}
	case Entity:
		return BareItem{Block: typed}
	default:
		return EmptyItem{}
	}
}

func DecodeItems(raw []any) []ResultItem {
	out := make([]ResultItem, 0, len(raw))
	for _, item := range raw {
		out = append(out, DecodeItem(item))
	}
	return out
}

func asEntity(v any) Entity {
	switch typed := v.(type) {
	case map[string]any:
		return Entity(typed)
	case Entity:
		return typed
	default:
		return nil
	}
}
