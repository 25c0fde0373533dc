package rpc

import "fmt"

const (
	// Request validation.
	ErrBadRequest       = "E_BAD_REQUEST"
	ErrUnknownMethod    = "E_UNKNOWN_METHOD"
	ErrUnknownDirection = "E_UNKNOWN_DIRECTION"

	// Simulation state.
	ErrUnknownAgent = "E_UNKNOWN_AGENT"
	ErrSaveNotFound = "E_SAVE_NOT_FOUND"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:       {},
	ErrUnknownMethod:    {},
	ErrUnknownDirection: {},
	ErrUnknownAgent:     {},
	ErrSaveNotFound:     {},
	ErrInternal:         {},
}

// IsKnownCode reports whether code belongs to the error taxonomy.
func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// Error is the structured failure payload of a Response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
