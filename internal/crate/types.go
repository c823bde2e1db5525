// SPDX-License-Identifier: MPL-2.0

package crate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CrateTypeBin is an executable.
	CrateTypeBin CrateType = "bin"
	// CrateTypeLib is a plain Rust library (rlib).
	CrateTypeLib CrateType = "lib"
	// CrateTypeProcMacro is a compiler plugin loaded by rustc itself.
	CrateTypeProcMacro CrateType = "proc-macro"
	// CrateTypeCdylib is a dynamic library with a C ABI.
	CrateTypeCdylib CrateType = "cdylib"

	// Editions accepted by rustc --edition.
	Edition2015 Edition = "2015"
	Edition2018 Edition = "2018"
	Edition2021 Edition = "2021"
	Edition2024 Edition = "2024"
)

var (
	// ErrInvalidCrateType is returned when a CrateType value is not recognized.
	ErrInvalidCrateType = errors.New("invalid crate type")
	// ErrInvalidEdition is returned when an Edition value is not recognized.
	ErrInvalidEdition = errors.New("invalid edition")
)

type (
	// CrateType is the output shape of one compilation unit.
	CrateType string

	// Edition is the Rust language edition of a package.
	Edition string

	// InvalidCrateTypeError is returned when a CrateType value is not recognized.
	InvalidCrateTypeError struct {
		Value CrateType
	}
)

// Validate returns an error if the crate type is unknown.
func (t CrateType) Validate() error {
	switch t {
	case CrateTypeBin, CrateTypeLib, CrateTypeProcMacro, CrateTypeCdylib:
		return nil
	default:
		return &InvalidCrateTypeError{Value: t}
	}
}

// Linkable reports whether rustc links a final artifact for this crate type,
// which is when link arguments and native search paths matter.
func (t CrateType) Linkable() bool {
	return t == CrateTypeBin || t == CrateTypeCdylib || t == CrateTypeProcMacro
}

// String returns the crate type as passed to rustc --crate-type.
func (t CrateType) String() string { return string(t) }

// Error implements the error interface.
func (e *InvalidCrateTypeError) Error() string {
	return fmt.Sprintf("unknown crate type %q", string(e.Value))
}

// Unwrap returns ErrInvalidCrateType for errors.Is() compatibility.
func (e *InvalidCrateTypeError) Unwrap() error { return ErrInvalidCrateType }

// Validate returns an error if the edition is unknown.
func (e Edition) Validate() error {
	switch e {
	case Edition2015, Edition2018, Edition2021, Edition2024:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEdition, string(e))
	}
}

// String returns the edition year.
func (e Edition) String() string { return string(e) }

// NormalizeName turns a package or target name into a crate symbol name.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
