// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural is matched by every StructuralError.
	ErrStructural = errors.New("invalid package graph")
	// ErrInvalidMetadata is returned when cargo metadata output cannot be used.
	ErrInvalidMetadata = errors.New("invalid cargo metadata")
)

// StructuralError reports a package graph that violates an invariant the
// build relies on, such as a package with two library targets.
type StructuralError struct {
	// Package is the offending package id, or empty for graph-wide errors.
	Package string
	Reason  string
}

func structural(pkg, format string, args ...any) error {
	return &StructuralError{Package: pkg, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Package == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Package, e.Reason)
}

// Unwrap returns ErrStructural for errors.Is() compatibility.
func (e *StructuralError) Unwrap() error { return ErrStructural }
