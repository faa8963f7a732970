// Package commands parses the table's "/" palette input into typed commands
// and dispatches them to handlers.
package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/lsqtable/internal/model"
	"github.com/sandeepkv93/lsqtable/internal/table"
)

type Type string

const (
	TypeSort    Type = "sort"
	TypeHide    Type = "hide"
	TypeShow    Type = "show"
	TypeAdd     Type = "add"
	TypeNew     Type = "new"
	TypeQuery   Type = "query"
	TypeRefresh Type = "refresh"
)

// NameColumn is the palette spelling of the page-name column.
const NameColumn = model.PageNameAlias

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type SortArgs struct {
	Column    string
	Direction table.Direction
}

type ColumnArgs struct {
	Column string
}

type NewArgs struct {
	Name string
}

type QueryArgs struct {
	Text string
}

type Command struct {
	Type   Type
	Raw    string
	Sort   *SortArgs
	Column *ColumnArgs
	New    *NewArgs
	Query  *QueryArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(raw[len(parts[0]):])

	switch Type(head) {
	case TypeSort:
		return parseSort(input, parts[1:])
	case TypeHide, TypeShow, TypeAdd:
		return parseColumn(input, Type(head), rest)
	case TypeNew:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "new requires a page name"}
		}
		return Command{Type: TypeNew, Raw: input, New: &NewArgs{Name: rest}}, nil
	case TypeQuery:
		return Command{Type: TypeQuery, Raw: input, Query: &QueryArgs{Text: rest}}, nil
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires a column"}
	}
	dir := table.Asc
	if len(args) > 1 {
		switch table.Direction(strings.ToLower(args[len(args)-1])) {
		case table.Asc:
			args = args[:len(args)-1]
		case table.Desc:
			dir = table.Desc
			args = args[:len(args)-1]
		}
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Column: columnKey(strings.Join(args, " ")), Direction: dir}}, nil
}

func parseColumn(raw string, typ Type, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a column", typ)}
	}
	col := rest
	if typ != TypeAdd {
		col = columnKey(rest)
	}
	return Command{Type: typ, Raw: raw, Column: &ColumnArgs{Column: col}}, nil
}

func columnKey(col string) string {
	return model.ColumnKey(col)
}
