package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type EntryListFilter struct {
	Prefix string
	Limit  int
	Offset int
}

type Repository interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, filter EntryListFilter) ([]Entry, error)
}
