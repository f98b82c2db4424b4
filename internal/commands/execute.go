package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Delete func(DeleteArgs) (Result, error)
	Key    func(KeyArgs) (Result, error)
	Plan   func() (Result, error)
	Show   func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "delete handler not configured"}
		}
		return handlers.Delete(*cmd.Delete)
	case TypeKey:
		if handlers.Key == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "key handler not configured"}
		}
		return handlers.Key(*cmd.Key)
	case TypePlan:
		if handlers.Plan == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "plan handler not configured"}
		}
		return handlers.Plan()
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
