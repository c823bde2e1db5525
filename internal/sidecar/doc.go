// SPDX-License-Identifier: MPL-2.0

// Package sidecar reads and writes the TOML records that carry state between
// jobs: the build-script result consumed by the compile job of the same
// package, and the library record a compiled library leaves for its
// dependents. Both are written once and never mutated.
package sidecar
