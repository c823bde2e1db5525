// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cargoshim command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cargoshim",
		Short: "Build Rust crates without cargo's scheduler",
		Long: TitleStyle.Render("cargoshim") + SubtitleStyle.Render(" - build Rust crates one job at a time") + `

cargoshim resolves a cargo project into per-package jobs, runs build
scripts and invokes rustc for each job, so an external build system can
own scheduling, caching and parallelism.

` + SubtitleStyle.Render("Pipeline:") + `
  cargoshim lockfile Cargo.lock vendor.json
  cargoshim unpack-vendor serde-1.0.200.crate unpacked/serde
  cargoshim write-vendor vendor-job.json vendor
  cargoshim metadata . vendor x86_64-unknown-linux-gnu packages.json
  cargoshim run-build-script ./build-script cargo rustc rustdoc . info.json out
  cargoshim compile . cargo rustc job.json out`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/cargoshim/config.cue)")

	root.AddCommand(
		newLockfileCommand(app),
		newUnpackVendorCommand(app),
		newWriteVendorCommand(app),
		newMetadataCommand(app),
		newRunBuildScriptCommand(app),
		newCompileCommand(app),
		newConfigCommand(app),
	)
	return root
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Run executes the CLI with os.Args and returns the process exit code.
func Run(ctx context.Context) int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.errorHandler),
	)
	return exitCode(err)
}

// Execute runs the CLI and exits.
func Execute() {
	os.Exit(Run(context.Background()))
}
