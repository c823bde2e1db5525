// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

var errBase = errors.New("base failure")

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "compile crate"},
			want: "failed to compile crate",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "read job", Resource: "job.json"},
			want: "failed to read job: job.json",
		},
		{
			name: "with cause",
			err:  &ActionableError{Operation: "read job", Resource: "job.json", Cause: errBase},
			want: "failed to read job: job.json: base failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().WithOperation("unpack").Wrap(errBase).BuildError()
	if !errors.Is(err, errBase) {
		t.Error("errors.Is should see the cause")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("errors.As failed for %T", err)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.Join(errBase)
	err := NewErrorContext().
		WithOperation("load configuration").
		WithResource("cargoshim.cue").
		WithSuggestion("Check the syntax").
		WithSuggestion("Run config dump").
		Wrap(inner).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "  • Check the syntax") || !strings.Contains(plain, "  • Run config dump") {
		t.Errorf("Format(false) lacks suggestions:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. base failure") {
		t.Errorf("Format(true) lacks the chain:\n%s", verbose)
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().Wrap(errBase).Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("nil error should stay nil")
	}
	err := WrapWithOperation(errBase, "write vendor directory")
	if err.Error() != "failed to write vendor directory: base failure" {
		t.Errorf("Error() = %q", err.Error())
	}
}
