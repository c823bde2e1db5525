// SPDX-License-Identifier: MPL-2.0

// Package compile turns one crate.Job into the rustc invocation that builds
// it. Flags are emitted in a fixed order since later rustc flags can
// override earlier ones. Synthesize also prepares the crate-type specific
// output layout: the bin/ and lib/ directories, the library record read by
// dependent jobs, and the versioned symlinks of a cdylib.
package compile
