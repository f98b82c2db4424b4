package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDelete Type = "delete"
	TypeKey    Type = "key"
	TypePlan   Type = "plan"
	TypeShow   Type = "show"
)

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

type AddArgs struct {
	Title string
}

type DeleteArgs struct {
	// Row is the 1-based position of the task in matrix display order.
	Row int
}

type KeyArgs struct {
	Key string
}

type ShowArgs struct {
	View string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Delete *DeleteArgs
	Key    *KeyArgs
	Show   *ShowArgs
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
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypeKey:
		return parseKey(input, args)
	case TypePlan:
		if len(args) != 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plan takes no arguments"}
		}
		return Command{Type: TypePlan, Raw: input}, nil
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires a task number"}
	}
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task number: %s", args[0])}
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Row: row}}, nil
}

func parseKey(raw string, args []string) (Command, error) {
	key := strings.TrimSpace(strings.Join(args, " "))
	if key == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "key requires an api key"}
	}
	return Command{Type: TypeKey, Raw: raw, Key: &KeyArgs{Key: key}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a view (matrix or schedule)"}
	}
	view := strings.ToLower(args[0])
	switch view {
	case "matrix", "schedule":
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{View: view}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view: %s", view)}
	}
}
