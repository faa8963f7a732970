package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/sort age desc", TypeSort},
		{"hide email", TypeHide},
		{"show email", TypeShow},
		{"/add status", TypeAdd},
		{"new Grace Hopper", TypeNew},
		{"query type::Book", TypeQuery},
		{"/refresh", TypeRefresh},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseSort(t *testing.T) {
	cases := []struct {
		in      string
		col     string
		dirWant table.Direction
	}{
		{"sort age", "age", table.Asc},
		{"sort age DESC", "age", table.Desc},
		{"sort @name", model.PageNameKey, table.Asc},
		{"sort name desc", "name", table.Desc},
		{"sort desc", "desc", table.Asc},
		{"sort due date asc", "due date", table.Asc},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Sort.Column != tc.col || cmd.Sort.Direction != tc.dirWant {
			t.Fatalf("parse %q = %+v", tc.in, *cmd.Sort)
		}
	}
}

func TestParseKeepsQueryText(t *testing.T) {
	cmd, err := Parse(`/query (page-property :type "Sci Fi")`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Query.Text != `(page-property :type "Sci Fi")` {
		t.Fatalf("query text mangled: %q", cmd.Query.Text)
	}
}

func TestParseHideNameIsAProperty(t *testing.T) {
	cmd, err := Parse("hide name")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Column.Column != "name" {
		t.Fatalf("a name property must stay addressable, got %q", cmd.Column.Column)
	}
	cmd, err = Parse("hide @name")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Column.Column != model.PageNameKey {
		t.Fatalf("expected name column key, got %q", cmd.Column.Column)
	}
}

func TestParseRejectsMissingArguments(t *testing.T) {
	for _, in := range []string{"sort", "hide", "show  ", "add", "new"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyAndUnknown(t *testing.T) {
	var ce *CommandError
	if _, err := Parse("  / "); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
	if _, err := Parse("/unknown do x"); !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/new Ada Lovelace")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		New: func(a NewArgs) (Result, error) {
			called = true
			if a.Name != "Ada Lovelace" {
				t.Fatalf("unexpected name: %q", a.Name)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("refresh")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
