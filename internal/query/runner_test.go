package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/lsqtable/internal/logseq/logseqtest"
	"github.com/sandeepkv93/lsqtable/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(blockUUID, content, page string) []any {
	return []any{
		map[string]any{"uuid": blockUUID, "content": content, "pre-block?": true, "properties": map[string]any{"type": "Person"}},
		map[string]any{"uuid": "page-" + blockUUID, "original-name": page},
	}
}

func TestRunEmptyTextSkipsHost(t *testing.T) {
	host := logseqtest.New()
	res, err := NewRunner(host, testutil.NewTestLogger(t)).Run(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, host.Calls())
}

func TestRunShorthandUsesKeywordStrictQuery(t *testing.T) {
	host := logseqtest.New()
	host.Datascript = func(q string) ([]any, error) {
		if strings.Contains(q, "(get ?props :type)") {
			return []any{pair("b-1", "type:: Person", "Ada")}, nil
		}
		return nil, nil
	}

	res, err := NewRunner(host, testutil.NewTestLogger(t)).Run(context.Background(), "type::Person")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Ada", res.Rows[0].Name)
	assert.True(t, res.PreferPageName)
	assert.Equal(t, `(page-property :type "Person")`, res.Query)
	require.NotNil(t, res.Filter)
	assert.Equal(t, "type", res.Filter.Key)
	assert.Equal(t, 1, host.Count("DatascriptQuery"))
	assert.Zero(t, host.Count("SimpleQuery"))
}

func TestRunFallsBackToStringKeyThenSimpleQuery(t *testing.T) {
	host := logseqtest.New()
	var seen []string
	host.Datascript = func(q string) ([]any, error) {
		seen = append(seen, q)
		if strings.Contains(q, `(get ?props :类型)`) {
			return nil, errors.New("invalid keyword")
		}
		return nil, nil
	}
	host.Simple = func(string) ([]any, error) {
		return []any{map[string]any{"uuid": "p-1", "original-name": "张三"}}, nil
	}

	res, err := NewRunner(host, testutil.NewTestLogger(t)).Run(context.Background(), "类型::人")
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Contains(t, seen[1], `(get ?props "类型")`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "张三", res.Rows[0].Name)
	assert.Equal(t, 1, host.Count("SimpleQuery"))
}

func TestRunRawDatalogPassesThrough(t *testing.T) {
	host := logseqtest.New()
	raw := `[:find (pull ?b [*]) :where [?b :block/marker "TODO"]]`
	host.Datascript = func(q string) ([]any, error) {
		assert.Equal(t, raw, q)
		return []any{[]any{map[string]any{"uuid": "b-1", "content": "TODO write"}}}, nil
	}
	res, err := NewRunner(host, testutil.NewTestLogger(t)).Run(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Nil(t, res.Filter)
	assert.False(t, res.PreferPageName)
}

func TestRunHostFailureReturnsEmptyRows(t *testing.T) {
	host := logseqtest.New()
	host.Errors["SimpleQuery"] = errors.New("connection refused")
	res, err := NewRunner(host, testutil.NewTestLogger(t)).Run(context.Background(), "(task TODO)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestStrictPagePropertyQueryEscapesValue(t *testing.T) {
	q := StrictPagePropertyQuery(":title", `say "hi"`)
	assert.Contains(t, q, `[(= ?v "say \"hi\"")]`)
}
