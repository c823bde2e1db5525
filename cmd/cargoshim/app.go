// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/cargoshim/cargoshim/internal/config"
	"github.com/cargoshim/cargoshim/internal/issue"
)

type (
	// App is the composition root of the CLI. Command handlers read the
	// loaded configuration, the logger and the output streams from it.
	App struct {
		Config config.Provider

		stdout io.Writer
		stderr io.Writer

		verbose bool
		cfgFile string

		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard),
	}
}

// init loads the configuration and sets up the logger. It runs before
// every subcommand.
func (a *App) init(ctx context.Context) error {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return withIssue(issue.ConfigLoadFailedId, err)
	}
	a.cfg, a.cfgPath = cfg, path
	if cfg.UI.Verbose {
		a.verbose = true
	}

	level := cfg.LogLevel()
	if a.verbose && cfg.Log.Level == "" {
		level = "debug"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
	a.logger.Debug("configuration loaded", "file", path)
	return nil
}

// orDefault returns arg, or def when arg is empty.
func orDefault(arg, def string) string {
	if arg == "" {
		return def
	}
	return arg
}
