// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cargoshim/cargoshim/internal/issue"
	"github.com/cargoshim/cargoshim/internal/resolve"
)

func newMetadataCommand(app *App) *cobra.Command {
	var cargo string
	cmd := &cobra.Command{
		Use:   "metadata <project-dir> <vendor-dir> <target> <out>",
		Short: "Resolve the project into per-package build jobs",
		Long: `Run cargo metadata offline against the vendor directory and write the
resolved packages as JSON: one entry per package with its library,
binaries and build script jobs, plus the build order.

Features come from the features and no_default_features settings, or
the features and noDefaultFeatures environment variables.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := resolve.Run(cmd.Context(), resolve.Options{
				ProjectDir:        args[0],
				VendorDir:         args[1],
				Target:            args[2],
				Cargo:             orDefault(cargo, app.cfg.Toolchain.Cargo),
				Features:          app.cfg.Features,
				NoDefaultFeatures: app.cfg.NoDefaultFeatures,
				Logger:            app.logger,
			})
			if err != nil {
				return withIssue(issue.MetadataFailedId, err)
			}
			app.logger.Debug("resolved packages", "count", len(out.Packages))
			return out.Write(args[3])
		},
	}
	cmd.Flags().StringVar(&cargo, "cargo", "", "cargo binary (default from toolchain.cargo)")
	return cmd
}
