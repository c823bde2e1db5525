// SPDX-License-Identifier: MPL-2.0

// Package resolve turns the dependency graph reported by `cargo metadata`
// into one ResolvedPackage per graph node: its classified build targets,
// its dependency edges split into normal and build-time sets, and every
// path and identity rewritten so the output does not depend on where the
// project or the vendor directory live on disk.
package resolve
