// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cargoshim/cargoshim/internal/cueutil"
	"github.com/cargoshim/cargoshim/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cargoshim"
	// ConfigFileName is the config file name inside the config directory.
	ConfigFileName = "config.cue"
	// LocalConfigFileName is the config file looked up in the working directory.
	LocalConfigFileName = "cargoshim.cue"

	// EnvPrefix prefixes the environment variables bound to config keys.
	EnvPrefix = "CARGOSHIM"
	// FeaturesEnv lists space separated features to enable.
	FeaturesEnv = "features"
	// NoDefaultFeaturesEnv disables default features when set to "1".
	NoDefaultFeaturesEnv = "noDefaultFeatures"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the cargoshim configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, $XDG_CONFIG_HOME
// (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, AppName), nil
}

// loadWithOptions loads the configuration and returns the path of the file
// it came from, empty when only defaults and the environment applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'cargoshim config dump' for a valid starting point").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	applyFeatureEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables").
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("features", d.Features)
	v.SetDefault("no_default_features", d.NoDefaultFeatures)
	v.SetDefault("toolchain.cargo", d.Toolchain.Cargo)
	v.SetDefault("toolchain.rustc", d.Toolchain.Rustc)
	v.SetDefault("toolchain.rustdoc", d.Toolchain.Rustdoc)
	v.SetDefault("build_script.num_jobs", d.BuildScript.NumJobs)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color", string(d.UI.Color))
	v.SetDefault("log.level", d.Log.Level)
}

// applyFeatureEnv reads the feature selection variables set by the build
// system driving cargoshim.
func applyFeatureEnv(cfg *Config) {
	if v, ok := os.LookupEnv(FeaturesEnv); ok {
		cfg.Features = strings.Fields(v)
	}
	if v, ok := os.LookupEnv(NoDefaultFeaturesEnv); ok {
		cfg.NoDefaultFeatures = v == "1"
	}
}

// findConfigFile resolves which file to load. An explicit path must exist;
// the fallbacks are optional.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'cargoshim config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if p := filepath.Join(dir, ConfigFileName); fileExists(p) {
		return p, nil
	}

	local := LocalConfigFileName
	if opts.BaseDir != "" {
		local = filepath.Join(opts.BaseDir, LocalConfigFileName)
	}
	if fileExists(local) {
		return local, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it over
// the defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	m, err := cueutil.DecodeMap(configSchema, data, "#Config", path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cargoshim configuration\n\n")

	sb.WriteString("features: [")
	for i, f := range cfg.Features {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", f)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "no_default_features: %v\n", cfg.NoDefaultFeatures)

	sb.WriteString("\ntoolchain: {\n")
	fmt.Fprintf(&sb, "\tcargo:   %q\n", cfg.Toolchain.Cargo)
	fmt.Fprintf(&sb, "\trustc:   %q\n", cfg.Toolchain.Rustc)
	fmt.Fprintf(&sb, "\trustdoc: %q\n", cfg.Toolchain.Rustdoc)
	sb.WriteString("}\n")

	sb.WriteString("\nbuild_script: {\n")
	fmt.Fprintf(&sb, "\tnum_jobs: %d\n", cfg.BuildScript.NumJobs)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor:   %q\n", cfg.UI.Color)
	sb.WriteString("}\n")

	if cfg.Log.Level != "" {
		sb.WriteString("\nlog: {\n")
		fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
		sb.WriteString("}\n")
	}

	return sb.String()
}
