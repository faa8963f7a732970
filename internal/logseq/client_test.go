package logseq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
	Auth   string `json:"-"`
}

func newTestServer(t *testing.T, reply func(r recorded) (int, string)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/api", req.URL.Path)
		assert.Equal(t, http.MethodPost, req.Method)
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		var rec recorded
		require.NoError(t, json.Unmarshal(body, &rec))
		rec.Auth = req.Header.Get("Authorization")
		calls = append(calls, rec)
		status, payload := reply(rec)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "secret"), &calls
}

func TestDatascriptQuerySendsMethodAndToken(t *testing.T) {
	c, calls := newTestServer(t, func(recorded) (int, string) {
		return http.StatusOK, `[[{"uuid":"b-1"},{"uuid":"p-1"}]]`
	})

	out, err := c.DatascriptQuery(context.Background(), "[:find ?b]")
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "logseq.DB.datascriptQuery", got.Method)
	assert.Equal(t, []any{"[:find ?b]"}, got.Args)
	assert.Equal(t, "Bearer secret", got.Auth)
}

func TestQueryNullIsEmpty(t *testing.T) {
	c, _ := newTestServer(t, func(recorded) (int, string) { return http.StatusOK, "null" })
	out, err := c.SimpleQuery(context.Background(), `(page-property :type "Person")`)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	c, _ := newTestServer(t, func(recorded) (int, string) {
		return http.StatusUnauthorized, `{"error":"bad token"}`
	})
	_, err := c.SimpleQuery(context.Background(), "(task TODO)")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "logseq.DB.q", apiErr.Method)
	assert.Contains(t, apiErr.Error(), "bad token")
}

func TestGetBlockNotFound(t *testing.T) {
	c, _ := newTestServer(t, func(recorded) (int, string) { return http.StatusOK, "null" })
	_, err := c.GetBlock(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePageSendsFirstBlockOption(t *testing.T) {
	c, calls := newTestServer(t, func(recorded) (int, string) {
		return http.StatusOK, `{"id": 7, "uuid": "p-7", "name": "ada", "originalName": "Ada"}`
	})
	p, err := c.CreatePage(context.Background(), "Ada", map[string]string{"type": "Person"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.OriginalName)
	assert.Equal(t, int64(7), p.ID)

	args := (*calls)[0].Args
	require.Len(t, args, 3)
	assert.Equal(t, "Ada", args[0])
	assert.Equal(t, map[string]any{"type": "Person"}, args[1])
	assert.Equal(t, map[string]any{"createFirstBlock": true, "redirect": false}, args[2])
}

func TestPropertyMutations(t *testing.T) {
	c, calls := newTestServer(t, func(recorded) (int, string) { return http.StatusOK, "null" })
	ctx := context.Background()
	require.NoError(t, c.UpsertBlockProperty(ctx, "b-1", "status", "done"))
	require.NoError(t, c.RemoveBlockProperty(ctx, "b-1", "status"))
	require.NoError(t, c.RenamePage(ctx, "Old", "New"))

	require.Len(t, *calls, 3)
	assert.Equal(t, "logseq.Editor.upsertBlockProperty", (*calls)[0].Method)
	assert.Equal(t, []any{"b-1", "status", "done"}, (*calls)[0].Args)
	assert.Equal(t, "logseq.Editor.removeBlockProperty", (*calls)[1].Method)
	assert.Equal(t, "logseq.Editor.renamePage", (*calls)[2].Method)
}
