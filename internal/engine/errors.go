package engine

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by Dispatch once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// ActionError reports an action the engine refused to apply. Nothing in the
// state tree changes when one is returned.
type ActionError struct {
	// Code identifies the error category.
	Code ActionErrorCode

	// Action is the name of the rejected action.
	Action string

	// Message is a human-readable description.
	Message string
}

// ActionErrorCode categorizes rejected actions.
type ActionErrorCode string

const (
	// ErrCodeInvalidKey indicates a catalog key that names no resource.
	ErrCodeInvalidKey ActionErrorCode = "INVALID_KEY"

	// ErrCodeInvalidField indicates a checkout field that does not exist.
	ErrCodeInvalidField ActionErrorCode = "INVALID_FIELD"

	// ErrCodeInvalidProduct indicates a product that cannot go in the cart.
	ErrCodeInvalidProduct ActionErrorCode = "INVALID_PRODUCT"

	// ErrCodeUnknownAction indicates an action type the engine cannot handle.
	ErrCodeUnknownAction ActionErrorCode = "UNKNOWN_ACTION"
)

// Error implements the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
}

// IsActionError reports whether err is an ActionError with code.
func IsActionError(err error, code ActionErrorCode) bool {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func newActionError(code ActionErrorCode, a Action, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Action: a.Name(), Message: fmt.Sprintf(format, args...)}
}
