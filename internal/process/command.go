// SPDX-License-Identifier: MPL-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrCommandFailed is matched by every CommandError via errors.Is.
var ErrCommandFailed = errors.New("command failed")

type (
	// ExitCode is the status a child process exited with. Launch failures and
	// deaths by signal are reported as 1.
	ExitCode int

	// Command describes one external program launch. The environment is an
	// explicit value: Env is layered on top of the inherited environment after
	// the names in Unset have been removed.
	Command struct {
		// Path is the program to execute.
		Path string
		// Args are the arguments, not including the program itself.
		Args []string
		// Env holds variables set for the child only.
		Env map[string]string
		// Unset lists inherited variables the child must not see.
		Unset []string
		// Dir is the working directory; empty means the current one.
		Dir string
		// Environ returns the inherited environment. When nil, os.Environ() is used.
		Environ func() []string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// CommandError reports a launch failure or a non-zero exit. Command is the
	// full shell-quoted command line that was attempted.
	CommandError struct {
		Command  string
		ExitCode ExitCode
		Stderr   string
		Err      error
	}
)

// New creates a Command with an empty environment override map.
func New(path string, args ...string) *Command {
	return &Command{
		Path: path,
		Args: args,
		Env:  make(map[string]string),
	}
}

// Arg appends arguments and returns the command for chaining.
func (c *Command) Arg(args ...string) *Command {
	c.Args = append(c.Args, args...)
	return c
}

// Setenv sets a variable for the child.
func (c *Command) Setenv(key, value string) *Command {
	if c.Env == nil {
		c.Env = make(map[string]string)
	}
	c.Env[key] = value
	return c
}

// Environment returns the complete "KEY=VALUE" environment the child receives.
func (c *Command) Environment() []string {
	return buildEnviron(c.Environ, c.Unset, c.Env)
}

// Cmd builds the exec.Cmd for this command.
func (c *Command) Cmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Environment()
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd
}

// Run executes the command and waits for it. Any failure is returned as a
// *CommandError.
func (c *Command) Run(ctx context.Context) error {
	return c.Wrap(c.Cmd(ctx).Run())
}

// Output executes the command and returns its standard output. Standard error
// is captured and attached to the error on failure.
func (c *Command) Output(ctx context.Context) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := c.Cmd(ctx)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		wrapped := c.Wrap(err)
		var cmdErr *CommandError
		if errors.As(wrapped, &cmdErr) {
			cmdErr.Stderr = strings.TrimSpace(stderr.String())
		}
		return nil, wrapped
	}
	return stdout.Bytes(), nil
}

// Wrap converts an error returned by exec.Cmd.Run or Wait into a *CommandError.
// A nil error stays nil.
func (c *Command) Wrap(err error) error {
	if err == nil {
		return nil
	}
	cmdErr := &CommandError{Command: c.String(), ExitCode: 1, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitCodeOf(exitErr)
	}
	return cmdErr
}

// exitCodeOf maps a finished child's status onto an ExitCode. Go reports a
// child killed by a signal as -1.
func exitCodeOf(exitErr *exec.ExitError) ExitCode {
	if code := exitErr.ExitCode(); code > 0 {
		return ExitCode(code)
	}
	return 1
}

// String returns the command line quoted for a POSIX shell.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, arg := range append([]string{c.Path}, c.Args...) {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	quoted, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return quoted
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var msg string
	var exitErr *exec.ExitError
	switch {
	case errors.As(e.Err, &exitErr) && exitErr.ExitCode() < 0:
		msg = fmt.Sprintf("command terminated (%s): %s", exitErr, e.Command)
	case exitErr != nil:
		msg = fmt.Sprintf("command exited with status %d: %s", e.ExitCode, e.Command)
	default:
		msg = fmt.Sprintf("failed to execute %s: %v", e.Command, e.Err)
	}
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCommandFailed.
func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }
