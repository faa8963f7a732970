// Package mutation coordinates inline edits: it applies a committed value to
// local rows at once and turns it into the matching host mutation.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sandeepkv93/lsqtable/internal/filter"
	"github.com/sandeepkv93/lsqtable/internal/logseq"
	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

// Host is the part of the host API the coordinator mutates through.
type Host interface {
	GetBlock(ctx context.Context, uuid string) (*logseq.Block, error)
	UpdateBlock(ctx context.Context, uuid, content string) error
	UpsertBlockProperty(ctx context.Context, uuid, key string, value any) error
	RemoveBlockProperty(ctx context.Context, uuid, key string) error
	CreatePage(ctx context.Context, name string, properties map[string]string) (*logseq.Page, error)
	RenamePage(ctx context.Context, oldName, newName string) error
	GetPage(ctx context.Context, nameOrUUID string) (*logseq.Page, error)
	GetPageBlocksTree(ctx context.Context, nameOrUUID string) ([]logseq.Block, error)
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseEditing Phase = "editing"
	PhaseSaving  Phase = "saving"
	PhaseFailed  Phase = "failed"
)

var (
	ErrNotEditing = errors.New("mutation: no cell is being edited")
	ErrEmptyName  = errors.New("mutation: page name is required")
)

type Kind string

const (
	KindRename         Kind = "rename"
	KindSetProperty    Kind = "set_property"
	KindRemoveProperty Kind = "remove_property"
)

type Edit struct {
	RowUUID  string
	Key      string
	Previous string
}

type Mutation struct {
	// Seq is assigned by Commit; zero for mutations built directly.
	Seq     uint64
	Kind    Kind
	RowUUID string
	Key     string
	Value   string
}

func (m Mutation) String() string {
	switch m.Kind {
	case KindRename:
		return fmt.Sprintf("rename %s to %q", m.RowUUID, m.Value)
	case KindRemoveProperty:
		return fmt.Sprintf("remove %s from %s", m.Key, m.RowUUID)
	default:
		return fmt.Sprintf("set %s=%q on %s", m.Key, m.Value, m.RowUUID)
	}
}

// Coordinator is shared by value-copied UI models, so its state is guarded.
type Coordinator struct {
	host   Host
	logger *slog.Logger

	mu      sync.Mutex
	phase   Phase
	edit    *Edit
	seq     uint64
	pending map[uint64]struct{}
}

func NewCoordinator(host Host, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{host: host, logger: logger, phase: PhaseIdle, pending: map[uint64]struct{}{}}
}

func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Editing returns the open edit, if any.
func (c *Coordinator) Editing() (Edit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return Edit{}, false
	}
	return *c.edit, true
}

// Begin opens key of row for editing, replacing any other open edit.
func (c *Coordinator) Begin(row model.Row, key string) Edit {
	e := Edit{RowUUID: row.UUID, Key: key, Previous: table.FormatValue(row.Value(key))}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = &e
	c.phase = PhaseEditing
	return e
}

func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
	if c.phase == PhaseEditing {
		c.phase = PhaseIdle
	}
}

// Commit applies value to a copy of rows and returns the mutation to issue.
// ok is false when nothing changed; the edit is closed either way.
func (c *Coordinator) Commit(rows []model.Row, value string) (updated []model.Row, m Mutation, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return rows, Mutation{}, false, ErrNotEditing
	}
	e := *c.edit
	c.edit = nil

	if value == e.Previous {
		c.phase = PhaseIdle
		return rows, Mutation{}, false, nil
	}

	updated = ApplyLocal(rows, e.RowUUID, e.Key, value)
	m = MutationFor(e.RowUUID, e.Key, value)
	c.seq++
	m.Seq = c.seq
	c.pending[m.Seq] = struct{}{}
	c.phase = PhaseSaving
	return updated, m, true, nil
}

// Done records the outcome of m, a mutation issued by Commit. Saving ends
// only once every issued mutation has reported; unknown or repeated
// sequence numbers are ignored.
func (c *Coordinator) Done(m Mutation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[m.Seq]; !ok {
		c.logger.Debug("stale mutation result ignored", "seq", m.Seq)
		return
	}
	delete(c.pending, m.Seq)
	if c.phase != PhaseSaving {
		return
	}
	if err != nil {
		c.phase = PhaseFailed
		return
	}
	if len(c.pending) == 0 {
		c.phase = PhaseIdle
	}
}

// InFlight reports how many committed mutations have not reported back.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Acknowledge returns a failed coordinator to idle once the caller has
// reported the failure and asked for a re-fetch.
func (c *Coordinator) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseFailed {
		c.phase = PhaseIdle
	}
}

// MutationFor maps an edited cell to the host mutation it needs.
func MutationFor(rowUUID, key, value string) Mutation {
	switch {
	case key == model.PageNameKey:
		return Mutation{Kind: KindRename, RowUUID: rowUUID, Value: value}
	case strings.TrimSpace(value) == "":
		return Mutation{Kind: KindRemoveProperty, RowUUID: rowUUID, Key: key}
	default:
		return Mutation{Kind: KindSetProperty, RowUUID: rowUUID, Key: key, Value: value}
	}
}

// ApplyLocal returns a copy of rows with the edit applied optimistically.
func ApplyLocal(rows []model.Row, rowUUID, key, value string) []model.Row {
	out := make([]model.Row, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].UUID != rowUUID {
			continue
		}
		r := out[i].Clone()
		switch {
		case key == model.PageNameKey:
			r.Name = value
		case strings.TrimSpace(value) == "":
			delete(r.Properties, key)
		default:
			r.Properties[key] = value
		}
		out[i] = r
	}
	return out
}

// Apply issues m to the host. There is no field-level rollback: on failure the
// caller re-fetches to resynchronize with the graph.
func (c *Coordinator) Apply(ctx context.Context, m Mutation) error {
	c.logger.Info("applying mutation", "kind", m.Kind, "row", m.RowUUID, "key", m.Key)
	var err error
	switch m.Kind {
	case KindRename:
		err = c.rename(ctx, m)
	case KindSetProperty, KindRemoveProperty:
		err = c.updateProperty(ctx, m)
	default:
		err = fmt.Errorf("mutation: unknown kind %q", m.Kind)
	}
	if err != nil {
		c.logger.Error("mutation failed", "mutation", m.String(), "error", err)
		return err
	}
	return nil
}

func (c *Coordinator) rename(ctx context.Context, m Mutation) error {
	if strings.TrimSpace(m.Value) == "" {
		return ErrEmptyName
	}
	if err := c.host.RenamePage(ctx, m.RowUUID, m.Value); err != nil {
		return fmt.Errorf("mutation: rename page: %w", err)
	}
	return nil
}

func (c *Coordinator) updateProperty(ctx context.Context, m Mutation) error {
	target := c.resolveTarget(ctx, m.RowUUID)
	var err error
	if m.Kind == KindRemoveProperty {
		err = c.host.RemoveBlockProperty(ctx, target, m.Key)
	} else {
		err = c.host.UpsertBlockProperty(ctx, target, m.Key, m.Value)
	}
	if err != nil {
		return fmt.Errorf("mutation: update property %s: %w", m.Key, err)
	}
	c.touch(ctx, target)
	return nil
}

// resolveTarget maps a page uuid to its first block so the property lands in
// the page file's property block. Anything that fails to resolve is written
// as-is.
func (c *Coordinator) resolveTarget(ctx context.Context, id string) string {
	if _, err := c.host.GetPage(ctx, id); err != nil {
		return id
	}
	blocks, err := c.host.GetPageBlocksTree(ctx, id)
	if err != nil || len(blocks) == 0 || blocks[0].UUID == "" {
		return id
	}
	return blocks[0].UUID
}

// touch rewrites the block with its own content, which makes the host re-parse
// and re-index it so the next query sees the new property.
func (c *Coordinator) touch(ctx context.Context, id string) {
	b, err := c.host.GetBlock(ctx, id)
	if err != nil || b.Content == "" {
		return
	}
	if err := c.host.UpdateBlock(ctx, id, b.Content); err != nil {
		c.logger.Warn("re-index touch failed", "block", id, "error", err)
	}
}

// CreatePage creates name seeded with the properties implied by filterText.
// The host indexes asynchronously, so callers re-fetch after a fixed delay.
func (c *Coordinator) CreatePage(ctx context.Context, name, filterText string) (*logseq.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	props := filter.PropertiesFromFilter(filterText)
	page, err := c.host.CreatePage(ctx, name, props)
	if err != nil {
		c.logger.Error("create page failed", "name", name, "error", err)
		return nil, fmt.Errorf("mutation: create page: %w", err)
	}
	c.logger.Info("page created", "name", name, "properties", len(props))
	return page, nil
}
