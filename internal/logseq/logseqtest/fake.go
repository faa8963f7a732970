// Package logseqtest provides an in-memory stand-in for the Logseq host API.
package logseqtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sandeepkv93/lsqtable/internal/logseq"
)

type Call struct {
	Method string
	Args   []any
}

// Fake records every call. Query answers come from the Datascript and Simple
// hooks; Errors injects a failure for a method name such as "RenamePage".
type Fake struct {
	mu     sync.Mutex
	calls  []Call
	blocks map[string]*logseq.Block
	pages  map[string]*logseq.Page
	trees  map[string][]logseq.Block

	Datascript func(query string) ([]any, error)
	Simple     func(query string) ([]any, error)
	Errors     map[string]error
}

func New() *Fake {
	return &Fake{
		blocks: make(map[string]*logseq.Block),
		pages:  make(map[string]*logseq.Page),
		trees:  make(map[string][]logseq.Block),
		Errors: make(map[string]error),
	}
}

func (f *Fake) record(method string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
	return f.Errors[method]
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many times method was called.
func (f *Fake) Count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *Fake) PutBlock(b logseq.Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[b.UUID] = &b
}

// PutPage registers a page and its top-level blocks.
func (f *Fake) PutPage(p logseq.Page, blocks ...logseq.Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[p.UUID] = &p
	f.pages[strings.ToLower(p.OriginalName)] = &p
	f.trees[p.UUID] = blocks
	for i := range blocks {
		b := blocks[i]
		f.blocks[b.UUID] = &b
	}
}

func (f *Fake) Block(id string) (logseq.Block, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[id]
	if !ok {
		return logseq.Block{}, false
	}
	return *b, true
}

func (f *Fake) DatascriptQuery(_ context.Context, query string) ([]any, error) {
	if err := f.record("DatascriptQuery", query); err != nil {
		return nil, err
	}
	if f.Datascript == nil {
		return nil, nil
	}
	return f.Datascript(query)
}

func (f *Fake) SimpleQuery(_ context.Context, query string) ([]any, error) {
	if err := f.record("SimpleQuery", query); err != nil {
		return nil, err
	}
	if f.Simple == nil {
		return nil, nil
	}
	return f.Simple(query)
}

func (f *Fake) GetBlock(_ context.Context, id string) (*logseq.Block, error) {
	if err := f.record("GetBlock", id); err != nil {
		return nil, err
	}
	b, ok := f.Block(id)
	if !ok {
		return nil, logseq.ErrNotFound
	}
	return &b, nil
}

func (f *Fake) UpdateBlock(_ context.Context, id, content string) error {
	if err := f.record("UpdateBlock", id, content); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[id]
	if !ok {
		return fmt.Errorf("logseqtest: block %s not found", id)
	}
	b.Content = content
	return nil
}

func (f *Fake) UpsertBlockProperty(_ context.Context, id, key string, value any) error {
	if err := f.record("UpsertBlockProperty", id, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[id]
	if !ok {
		b = &logseq.Block{UUID: id}
		f.blocks[id] = b
	}
	if b.Properties == nil {
		b.Properties = make(map[string]any)
	}
	b.Properties[key] = value
	return nil
}

func (f *Fake) RemoveBlockProperty(_ context.Context, id, key string) error {
	if err := f.record("RemoveBlockProperty", id, key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.blocks[id]; ok {
		delete(b.Properties, key)
	}
	return nil
}

func (f *Fake) CreatePage(_ context.Context, name string, properties map[string]string) (*logseq.Page, error) {
	if err := f.record("CreatePage", name, properties); err != nil {
		return nil, err
	}
	p := logseq.Page{UUID: uuid.NewString(), Name: strings.ToLower(name), OriginalName: name}
	props := make(map[string]any, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	first := logseq.Block{UUID: uuid.NewString(), Properties: props}
	f.PutPage(p, first)
	return &p, nil
}

func (f *Fake) RenamePage(_ context.Context, oldName, newName string) error {
	return f.record("RenamePage", oldName, newName)
}

func (f *Fake) GetPage(_ context.Context, nameOrUUID string) (*logseq.Page, error) {
	if err := f.record("GetPage", nameOrUUID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[nameOrUUID]
	if !ok {
		p, ok = f.pages[strings.ToLower(nameOrUUID)]
	}
	if !ok {
		return nil, logseq.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *Fake) GetPageBlocksTree(_ context.Context, nameOrUUID string) ([]logseq.Block, error) {
	if err := f.record("GetPageBlocksTree", nameOrUUID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[nameOrUUID]
	if !ok {
		return nil, nil
	}
	tree := f.trees[p.UUID]
	out := make([]logseq.Block, len(tree))
	copy(out, tree)
	return out, nil
}
