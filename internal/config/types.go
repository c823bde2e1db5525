// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// ColorAuto colors output when writing to a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"
)

var (
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidLogLevel is returned for an unknown log.level.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidNumJobs is returned for a non-positive build_script.num_jobs.
	ErrInvalidNumJobs = errors.New("invalid number of jobs")
)

type (
	// ColorMode selects when build-script progress is colored.
	ColorMode string

	// Config is the complete cargoshim configuration.
	Config struct {
		// Features are the cargo features enabled for the main package.
		Features          []string          `json:"features" mapstructure:"features"`
		NoDefaultFeatures bool              `json:"no_default_features" mapstructure:"no_default_features"`
		Toolchain         ToolchainConfig   `json:"toolchain" mapstructure:"toolchain"`
		BuildScript       BuildScriptConfig `json:"build_script" mapstructure:"build_script"`
		UI                UIConfig          `json:"ui" mapstructure:"ui"`
		Log               LogConfig         `json:"log" mapstructure:"log"`
	}

	// ToolchainConfig names the binaries used when a command is not given
	// explicit paths.
	ToolchainConfig struct {
		Cargo   string `json:"cargo" mapstructure:"cargo"`
		Rustc   string `json:"rustc" mapstructure:"rustc"`
		Rustdoc string `json:"rustdoc" mapstructure:"rustdoc"`
	}

	// BuildScriptConfig tunes build-script runs.
	BuildScriptConfig struct {
		// NumJobs is exported to build scripts as NUM_JOBS.
		NumJobs int `json:"num_jobs" mapstructure:"num_jobs"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose bool      `json:"verbose" mapstructure:"verbose"`
		Color   ColorMode `json:"color" mapstructure:"color"`
	}

	// LogConfig configures the structured logger.
	LogConfig struct {
		// Level is one of debug, info, warn, error. Empty follows ui.verbose.
		Level string `json:"level" mapstructure:"level"`
	}
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Features: []string{},
		Toolchain: ToolchainConfig{
			Cargo:   "cargo",
			Rustc:   "rustc",
			Rustdoc: "rustdoc",
		},
		BuildScript: BuildScriptConfig{NumJobs: 1},
		UI:          UIConfig{Color: ColorAuto},
	}
}

// Validate returns an error if the color mode is unknown.
func (c ColorMode) Validate() error {
	switch c {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorMode, string(c))
	}
}

// String returns the mode name.
func (c ColorMode) String() string { return string(c) }

// Validate checks the settings CUE constraints cannot see, such as values
// that arrived through the environment.
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.Color.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.BuildScript.NumJobs < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidNumJobs, c.BuildScript.NumJobs))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level))
	}
	return errors.Join(errs...)
}

// LogLevel returns the effective log level name.
func (c *Config) LogLevel() string {
	switch {
	case c.Log.Level != "":
		return c.Log.Level
	case c.UI.Verbose:
		return "debug"
	default:
		return "info"
	}
}
