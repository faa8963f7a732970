package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sandeepkv93/lsqtable/internal/scheduler"
	"github.com/sandeepkv93/lsqtable/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []scheduler.Reason
}

func (r *recorder) Debounce(_ string, reason scheduler.Reason, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reason)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(fsnotify.Event{Name: "/g/pages/Ada.md", Op: fsnotify.Write}))
	assert.True(t, relevant(fsnotify.Event{Name: "/g/journals/2026_01_01.org", Op: fsnotify.Create}))
	assert.False(t, relevant(fsnotify.Event{Name: "/g/pages/.Ada.md.swp", Op: fsnotify.Write}))
	assert.False(t, relevant(fsnotify.Event{Name: "/g/pages/image.png", Op: fsnotify.Write}))
	assert.False(t, relevant(fsnotify.Event{Name: "/g/pages/Ada.md", Op: fsnotify.Chmod}))
}

func TestNewRequiresGraphDirs(t *testing.T) {
	_, err := New(t.TempDir(), &recorder{}, 0, testutil.NewTestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoGraphDirs))
}

func TestWriteSchedulesRefresh(t *testing.T) {
	root := t.TempDir()
	pages := filepath.Join(root, "pages")
	require.NoError(t, os.Mkdir(pages, 0o755))

	rec := &recorder{}
	w, err := New(root, rec, 10*time.Millisecond, testutil.NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(pages, "Ada.md"), []byte("type:: Person\n"), 0o644))
	require.Eventually(t, func() bool { return rec.count() > 0 }, 2*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, scheduler.ReasonGraphChanged, rec.calls[0])
}
