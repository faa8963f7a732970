package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sandeepkv93/lsqtable/internal/table"
)

const (
	hiddenKeyPrefix  = "logseq-table-hidden-"
	columnsKeyPrefix = "logseq-table-columns-"
	sortKeyPrefix    = "logseq-table-sort-"
)

func HiddenKey(blockUUID string) string  { return hiddenKeyPrefix + blockUUID }
func ColumnsKey(blockUUID string) string { return columnsKeyPrefix + blockUUID }
func SortKey(blockUUID string) string    { return sortKeyPrefix + blockUUID }

// ViewStore persists per-table view state keyed by the owning block uuid.
// Reads never fail on bad data: missing or corrupt values yield defaults.
type ViewStore struct {
	repo   Repository
	logger *slog.Logger
}

func NewViewStore(repo Repository, logger *slog.Logger) *ViewStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewStore{repo: repo, logger: logger}
}

func (s *ViewStore) HiddenColumns(ctx context.Context, blockUUID string) []string {
	return s.stringList(ctx, HiddenKey(blockUUID))
}

func (s *ViewStore) SaveHiddenColumns(ctx context.Context, blockUUID string, hidden []string) error {
	if hidden == nil {
		hidden = []string{}
	}
	return s.putJSON(ctx, HiddenKey(blockUUID), hidden)
}

func (s *ViewStore) ColumnOrder(ctx context.Context, blockUUID string) []string {
	return s.stringList(ctx, ColumnsKey(blockUUID))
}

func (s *ViewStore) SaveColumnOrder(ctx context.Context, blockUUID string, columns []string) error {
	if columns == nil {
		columns = []string{}
	}
	return s.putJSON(ctx, ColumnsKey(blockUUID), columns)
}

type sortRecord struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// Sort returns the last sort for the table, or nil.
func (s *ViewStore) Sort(ctx context.Context, blockUUID string) *table.SortSpec {
	raw, ok := s.get(ctx, SortKey(blockUUID))
	if !ok {
		return nil
	}
	var rec sortRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Key == "" {
		return nil
	}
	dir := table.Direction(rec.Direction)
	if dir != table.Asc && dir != table.Desc {
		return nil
	}
	return &table.SortSpec{Key: rec.Key, Direction: dir}
}

// SaveSort stores spec; a nil spec clears the stored sort.
func (s *ViewStore) SaveSort(ctx context.Context, blockUUID string, spec *table.SortSpec) error {
	if spec == nil {
		err := s.repo.Delete(ctx, SortKey(blockUUID))
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.putJSON(ctx, SortKey(blockUUID), sortRecord{Key: spec.Key, Direction: string(spec.Direction)})
}

func (s *ViewStore) stringList(ctx context.Context, key string) []string {
	raw, ok := s.get(ctx, key)
	if !ok {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Warn("ignoring corrupt view state", "key", key, "error", err)
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func (s *ViewStore) get(ctx context.Context, key string) (string, bool) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("read view state", "key", key, "error", err)
		}
		return "", false
	}
	return entry.Value, true
}

func (s *ViewStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, key, string(data))
}
