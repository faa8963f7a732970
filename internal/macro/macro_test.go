package macro

import (
	"context"
	"errors"
	"testing"

	"github.com/sandeepkv93/lsqtable/internal/logseq"
	"github.com/sandeepkv93/lsqtable/internal/logseq/logseqtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"shorthand", "{{renderer :table-view, type::Person}}", "type::Person", true},
		{"comma in query rejoined", "{{renderer :table-view, (and [[a]],[[b]])}}", "(and [[a]], [[b]])", true},
		{"surrounding text", "People\n{{renderer :table-view,  (page-property :type \"Person\") }} tail", `(page-property :type "Person")`, true},
		{"no arguments", "{{renderer :table-view}}", "", true},
		{"other renderer", "{{renderer :kanban, x}}", "", false},
		{"plain text", "nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	content := "intro {{renderer :table-view, type::Person}} outro"
	out, changed := Rewrite(content, "status::done")
	require.True(t, changed)
	assert.Equal(t, "intro {{renderer :table-view, status::done}} outro", out)

	q, ok := Parse(out)
	require.True(t, ok)
	assert.Equal(t, "status::done", q)

	_, changed = Rewrite(out, "status::done")
	assert.False(t, changed)

	_, changed = Rewrite("no macro", "x")
	assert.False(t, changed)
}

func TestRewriteOnlyFirstMacro(t *testing.T) {
	content := "{{renderer :table-view, a::1}}\n{{renderer :table-view, b::2}}"
	out, changed := Rewrite(content, "c::3")
	require.True(t, changed)
	assert.Equal(t, "{{renderer :table-view, c::3}}\n{{renderer :table-view, b::2}}", out)
}

func TestBuild(t *testing.T) {
	assert.Equal(t, "{{renderer :table-view, type::Person}}", Build(""))
	assert.Equal(t, "{{renderer :table-view, type::Book}}", Build(" type：：Book "))
}

func TestUpdateQueryAndEmbed(t *testing.T) {
	host := logseqtest.New()
	host.PutBlock(logseq.Block{UUID: "b-1", Content: "{{renderer :table-view, type::Person}}"})
	host.PutBlock(logseq.Block{UUID: "b-2", Content: "Reading list"})
	ctx := context.Background()

	changed, err := UpdateQuery(ctx, host, "b-1", "type::Book")
	require.NoError(t, err)
	assert.True(t, changed)
	b, _ := host.Block("b-1")
	assert.Equal(t, "{{renderer :table-view, type::Book}}", b.Content)

	changed, err = UpdateQuery(ctx, host, "b-1", "type::Book")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, host.Count("UpdateBlock"))

	content, err := Embed(ctx, host, "b-2", "type::Book")
	require.NoError(t, err)
	assert.Equal(t, "Reading list\n{{renderer :table-view, type::Book}}", content)

	_, err = UpdateQuery(ctx, host, "missing", "x")
	assert.True(t, errors.Is(err, logseq.ErrNotFound))
}
