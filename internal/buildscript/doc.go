// SPDX-License-Identifier: MPL-2.0

// Package buildscript runs a compiled build script under Cargo's environment
// contract and folds the `cargo::` directives it prints into a
// sidecar.BuildScriptResult.
//
// The directive grammar accepts both the `cargo::name=value` form and the
// legacy `cargo:name=value` form. A legacy line whose name is not a known
// directive is recorded as metadata, as Cargo did before 1.77. An unknown
// `cargo::` directive is echoed and otherwise ignored.
package buildscript
