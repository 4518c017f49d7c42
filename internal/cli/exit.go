package cli

import (
	"errors"
	"fmt"
)

// Exit codes for statekit commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the demo or command failed at runtime
	ExitCommandError = 2 // bad flags, unreadable config or log paths
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError attaches code and message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode returns the code carried by err, ExitFailure for any other
// error, and ExitSuccess for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
