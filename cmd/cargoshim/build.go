// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cargoshim/cargoshim/internal/buildscript"
	"github.com/cargoshim/cargoshim/internal/compile"
	"github.com/cargoshim/cargoshim/internal/issue"
)

func newRunBuildScriptCommand(app *App) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "run-build-script <script> <cargo> <rustc> <rustdoc> <src> <info.json> <out>",
		Short: "Run a compiled build script and record its directives",
		Long: `Run a build script with cargo's environment contract, echo its output
and write <out>/result.toml with the link arguments, cfgs, environment
and metadata it printed. OUT_DIR is <out>/output.

Empty toolchain arguments fall back to the toolchain settings.`,
		Args: cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := buildscript.Run(cmd.Context(), buildscript.Options{
				Script:   args[0],
				Cargo:    orDefault(args[1], app.cfg.Toolchain.Cargo),
				Rustc:    orDefault(args[2], app.cfg.Toolchain.Rustc),
				Rustdoc:  orDefault(args[3], app.cfg.Toolchain.Rustdoc),
				Src:      args[4],
				InfoPath: args[5],
				Out:      args[6],
				NumJobs:  app.cfg.BuildScript.NumJobs,
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
				Color:    orDefault(color, string(app.cfg.UI.Color)),
				Logger:   app.logger,
			})
			return propagateExit(withIssue(issue.BuildScriptFailedId, err))
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "color build-script output: auto, always or never (default from ui.color)")
	return cmd
}

func newCompileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <src> <cargo> <rustc> <job.json> <out>",
		Short: "Compile one crate with rustc",
		Long: `Turn a compile job into a rustc invocation and run it. Libraries get a
rust-lib.toml record in <out> for their dependents. A failing rustc
makes cargoshim exit with the compiler's exit code.

Empty toolchain arguments fall back to the toolchain settings.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := compile.Run(cmd.Context(), args[3], compile.Options{
				Src:    args[0],
				Cargo:  orDefault(args[1], app.cfg.Toolchain.Cargo),
				Rustc:  orDefault(args[2], app.cfg.Toolchain.Rustc),
				Out:    args[4],
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
				Logger: app.logger,
			})
			return propagateExit(withIssue(issue.CompileFailedId, err))
		},
	}
}
