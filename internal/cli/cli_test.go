package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/lsqtable/internal/config"
	"github.com/sandeepkv93/lsqtable/internal/model"
)

type apiCall struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	fail  bool
	url   string
}

func (f *fakeAPI) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeAPI) call(method string) (apiCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method {
			return c, true
		}
	}
	return apiCall{}, false
}

const peoplePages = `[
  {"uuid":"p-1","original-name":"Ada","properties":{"type":"Person","age":36}},
  {"uuid":"p-2","original-name":"Grace","properties":{"type":"Person","age":85}}
]`

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var c apiCall
		require.NoError(t, json.Unmarshal(body, &c))
		f.mu.Lock()
		f.calls = append(f.calls, c)
		fail := f.fail
		f.mu.Unlock()

		if fail {
			http.Error(w, "graph offline", http.StatusInternalServerError)
			return
		}
		switch c.Method {
		case "logseq.DB.datascriptQuery":
			_, _ = io.WriteString(w, peoplePages)
		case "logseq.DB.q":
			_, _ = io.WriteString(w, "[]")
		case "logseq.Editor.getBlock":
			_, _ = io.WriteString(w, `{"uuid":"b-1","content":"Reading list"}`)
		case "logseq.Editor.createPage":
			_ = json.NewEncoder(w).Encode(map[string]any{"uuid": "new-page", "originalName": c.Args[0]})
		default:
			_, _ = io.WriteString(w, "null")
		}
	}))
	t.Cleanup(srv.Close)
	f.url = srv.URL
	return f
}

func run(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	config.ResetConfig()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if api != nil {
		args = append([]string{"--api-url", api.url}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lsqtable v"+Version)
}

func TestQueryCommand_Text(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "query", "type::Person")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Grace")
	assert.Contains(t, out, "(2 rows)")
	assert.NotContains(t, out, "Person", "the filtered column is not printed")
}

func TestQueryCommand_JSONSorted(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "query", "type::Person", "--sort", "age", "--desc", "-o", "json")
	require.NoError(t, err)

	var rows []jsonRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Grace", rows[0].Name)
	assert.True(t, rows[0].Page)
}

func TestQueryCommand_CSV(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "query", "type::Person", "-o", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,age", strings.ToLower(lines[0]))
	assert.Equal(t, "Ada,36", lines[1])
}

func TestQueryCommand_HostFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.fail = true

	_, err := run(t, api, "query", "[:find (pull ?p [*]) :where [?p :block/name]]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestQueryCommand_InvalidBlock(t *testing.T) {
	_, err := run(t, nil, "query", "--block", "nope")
	require.Error(t, err)
}

func TestSetCommand_EmptyValueRemoves(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "set", "b-9", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "remove status from b-9")
	c, ok := api.call("logseq.Editor.removeBlockProperty")
	require.True(t, ok)
	assert.Equal(t, []any{"b-9", "status"}, c.Args)
}

func TestSetCommand_RejectsNameColumn(t *testing.T) {
	for _, key := range []string{"@name", model.PageNameKey} {
		api := newFakeAPI(t)
		_, err := run(t, api, "set", "p-1", key, "Ada")
		require.Error(t, err, key)
		_, called := api.call("logseq.Editor.upsertBlockProperty")
		assert.False(t, called, key)
	}
}

func TestSetCommand_NamePropertyIsUpserted(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "set", "b-9", "name", "Ada")
	require.NoError(t, err)
	assert.Contains(t, out, `set name="Ada"`)
	c, ok := api.call("logseq.Editor.upsertBlockProperty")
	require.True(t, ok)
	assert.Equal(t, "name", c.Args[1])
	assert.Equal(t, "Ada", c.Args[2])
	_, renamed := api.call("logseq.Editor.renamePage")
	assert.False(t, renamed)
}

func TestRenameCommand(t *testing.T) {
	api := newFakeAPI(t)

	_, err := run(t, api, "rename", "p-1", "Ada", "Lovelace")
	require.NoError(t, err)
	c, ok := api.call("logseq.Editor.renamePage")
	require.True(t, ok)
	assert.Equal(t, []any{"p-1", "Ada Lovelace"}, c.Args)
}

func TestNewPageCommand_SeedsFilter(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "new-page", "Dune", "--filter", "type::Book")
	require.NoError(t, err)
	assert.Contains(t, out, "created Dune")
	c, ok := api.call("logseq.Editor.createPage")
	require.True(t, ok)
	assert.Equal(t, "Dune", c.Args[0])
	assert.Equal(t, map[string]any{"type": "Book"}, c.Args[1])
}

func TestEmbedCommand(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "embed", "b-1", "type::Book")
	require.NoError(t, err)
	assert.Contains(t, out, "{{renderer :table-view, type::Book}}")
	c, ok := api.call("logseq.Editor.updateBlock")
	require.True(t, ok)
	assert.Equal(t, "Reading list\n{{renderer :table-view, type::Book}}", c.Args[1])
	assert.Equal(t, []string{"logseq.Editor.getBlock", "logseq.Editor.updateBlock"}, api.methods())
}

func TestEmbedCommand_UpdateWithoutMacro(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, "embed", "b-1", "type::Book", "--update")
	require.NoError(t, err)
	assert.Equal(t, "unchanged\n", out)
	_, ok := api.call("logseq.Editor.updateBlock")
	assert.False(t, ok)
}

func TestRenderRows_EmptyAndMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderRows(&buf, "text", []string{model.PageNameKey}, nil))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	rows := []model.Row{{UUID: "p-1", Name: "Ada", Properties: map[string]any{"age": float64(36)}}}
	require.NoError(t, renderRows(&buf, "markdown", []string{model.PageNameKey, "age"}, rows))
	assert.Contains(t, buf.String(), "| Ada | 36 |")
}
