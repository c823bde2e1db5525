// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/cargoshim/cargoshim/internal/process"
)

// ExitError carries the exit code of a failed compiler or build script, so
// cargoshim exits the way the child did.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// propagateExit wraps a subprocess failure in an ExitError with the
// child's exit code. Other errors pass through.
func propagateExit(err error) error {
	var cmdErr *process.CommandError
	if errors.As(err, &cmdErr) {
		return &ExitError{Code: int(cmdErr.ExitCode), Err: err}
	}
	return err
}

// exitCode maps the result of a command run to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return 1
}
