package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Sort    func(SortArgs) (Result, error)
	Hide    func(ColumnArgs) (Result, error)
	Show    func(ColumnArgs) (Result, error)
	Add     func(ColumnArgs) (Result, error)
	New     func(NewArgs) (Result, error)
	Query   func(QueryArgs) (Result, error)
	Refresh func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSort:
		if handlers.Sort == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Sort(*cmd.Sort)
	case TypeHide:
		if handlers.Hide == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Hide(*cmd.Column)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Column)
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Column)
	case TypeNew:
		if handlers.New == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.New(*cmd.New)
	case TypeQuery:
		if handlers.Query == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Query(*cmd.Query)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
