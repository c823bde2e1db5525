// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include fake tool scripts (WriteScript), file operations
// (MustWriteFile, MustReadFile, MustMkdirAll, MustChdir) and home directory
// isolation (SetHomeDir).
package testutil
