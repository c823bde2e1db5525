// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cargoshim/cargoshim/internal/config"
)

// newConfigCommand creates the `cargoshim config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect cargoshim configuration",
		Long: `Inspect cargoshim configuration.

The file is the --config path, otherwise config.cue in the user config
directory ($XDG_CONFIG_HOME/cargoshim on Linux), otherwise ./cargoshim.cue.
CARGOSHIM_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			showConfig(cmd.OutOrStdout(), app)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfgPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), app.cfgPath)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, config.ConfigFileName))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, app *App) {
	cfg := app.cfg
	key := CmdStyle.Render
	value := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if app.cfgPath != "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), app.cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	features := SubtitleStyle.Render("(none)")
	if len(cfg.Features) > 0 {
		features = value(strings.Join(cfg.Features, " "))
	}
	rows := []struct{ k, v string }{
		{"features", features},
		{"no_default_features", value(strconv.FormatBool(cfg.NoDefaultFeatures))},
		{"toolchain.cargo", value(cfg.Toolchain.Cargo)},
		{"toolchain.rustc", value(cfg.Toolchain.Rustc)},
		{"toolchain.rustdoc", value(cfg.Toolchain.Rustdoc)},
		{"build_script.num_jobs", value(strconv.Itoa(cfg.BuildScript.NumJobs))},
		{"ui.verbose", value(strconv.FormatBool(cfg.UI.Verbose))},
		{"ui.color", value(cfg.UI.Color.String())},
		{"log.level", value(cfg.LogLevel())},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s: %s\n", key(r.k), r.v)
	}
}
