package store

import (
	"errors"
	"fmt"
)

// Configuration and usage errors. Callers match them with errors.Is.
var (
	ErrUnknownMutation     = errors.New("unknown mutation")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownGetter       = errors.New("unknown getter")
	ErrUnknownModule       = errors.New("unknown module")
	ErrDuplicateName       = errors.New("duplicate registration")
	ErrGetterCycle         = errors.New("getter cycle")
	ErrStrictModeViolation = errors.New("state mutated outside of a commit")
	ErrReentrantMutation   = errors.New("commit called from inside a mutation or subscriber")
	ErrPayloadType         = errors.New("unexpected payload type")
	ErrMutationPanic       = errors.New("mutation panicked")
	ErrActionPanic         = errors.New("action panicked")
	ErrGetterPanic         = errors.New("getter panicked")

	// ErrActionFailure is matched by every error returned from a failed action.
	ErrActionFailure = errors.New("action failed")
)

// Error describes a failed store operation on a named handler.
type Error struct {
	Op   string // "commit", "dispatch", "getter", "register", "verify", ...
	Name string // fully qualified handler name or module path
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ActionError is returned by Dispatch when the action itself fails. It
// unwraps to both ErrActionFailure and the underlying cause.
type ActionError struct {
	Name string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("dispatch %q: %v", e.Name, e.Err)
}

func (e *ActionError) Unwrap() []error {
	return []error{ErrActionFailure, e.Err}
}
