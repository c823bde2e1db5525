// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cargoshim/cargoshim/internal/issue"
	"github.com/cargoshim/cargoshim/internal/vendor"
)

func newLockfileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lockfile <Cargo.lock> <out>",
		Short: "List the registry packages to vendor",
		Long: `Read a Cargo.lock and write, as JSON keyed by name-version, every
registry package to download: its registry, SRI checksum and the
directory it is unpacked into.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vendors, err := vendor.PrepareLockfile(args[0])
			if err != nil {
				return withIssue(issue.LockfileInvalidId, err)
			}
			app.logger.Debug("lockfile prepared", "packages", len(vendors))
			return vendor.WriteJSON(args[1], vendors)
		},
	}
}

func newUnpackVendorCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unpack-vendor <archive> <out>",
		Short: "Unpack a crate archive with its checksum manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sums, err := vendor.Unpack(args[0], args[1])
			if err != nil {
				return withIssue(issue.UnsafeArchiveId, err)
			}
			app.logger.Debug("archive unpacked", "files", len(sums.Files), "sha256", sums.Package)
			return nil
		},
	}
}

func newWriteVendorCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "write-vendor <job.json> <out>",
		Short: "Assemble the vendor directory cargo resolves against",
		Long: `Create <out> with a config.toml replacing every used registry by the
vendored sources, and one symlink per unpacked crate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := vendor.LoadDependencies(args[0])
			if err != nil {
				return withIssue(issue.JobDecodeFailedId, err)
			}
			app.logger.Debug("writing vendor directory", "dir", args[1], "crates", len(deps))
			return vendor.WriteVendor(deps, args[1])
		},
	}
}
