// SPDX-License-Identifier: MPL-2.0

// Package crate defines the job records exchanged with the build orchestrator:
// the common per-package information a build script receives, and the full
// compile job the rustc synthesizer consumes. Records are JSON with camelCase
// keys because the orchestrator writes them.
package crate
