// SPDX-License-Identifier: MPL-2.0

package crate

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned when a package version is not valid semver.
var ErrInvalidVersion = errors.New("invalid package version")

// Version is a parsed package version split the way Cargo exposes it to
// build scripts and compiled crates.
type Version struct {
	Major string
	Minor string
	Patch string
	// Pre is the pre-release identifier without the leading '-'.
	Pre string
}

// ParseVersion parses a Cargo package version such as "1.2.3-beta.1+build".
func ParseVersion(v string) (Version, error) {
	canonical := "v" + v
	if !semver.IsValid(canonical) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	core := strings.TrimPrefix(canonical, "v")
	if build := semver.Build(canonical); build != "" {
		core = strings.TrimSuffix(core, build)
	}
	pre := semver.Prerelease(canonical)
	core = strings.TrimSuffix(core, pre)

	parts := strings.Split(core, ".")
	// semver.IsValid accepts "v1" and "v1.2" shorthands; Cargo does not.
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q must have major.minor.patch", ErrInvalidVersion, v)
	}
	return Version{
		Major: parts[0],
		Minor: parts[1],
		Patch: parts[2],
		Pre:   strings.TrimPrefix(pre, "-"),
	}, nil
}

// Triple returns "major.minor.patch".
func (v Version) Triple() string {
	return v.Major + "." + v.Minor + "." + v.Patch
}
