// SPDX-License-Identifier: MPL-2.0

// Package process launches the external programs cargoshim drives: build
// scripts, rustc, and cargo. Every launch goes through a Command value that
// carries its environment as an explicit key/value map, so nothing a job sets
// leaks into the cargoshim process itself.
package process
