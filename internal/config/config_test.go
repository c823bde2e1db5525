// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/cargoshim/cargoshim/internal/issue"
	"github.com/cargoshim/cargoshim/internal/testutil"
)

// isolate points every lookup at empty temp directories and clears the
// feature variables. Tests using it cannot run in parallel.
func isolate(t *testing.T) LoadOptions {
	t.Helper()
	for _, name := range []string{
		FeaturesEnv, NoDefaultFeaturesEnv,
		"CARGOSHIM_TOOLCHAIN_RUSTC", "CARGOSHIM_UI_COLOR", "CARGOSHIM_BUILD_SCRIPT_NUM_JOBS",
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: t.TempDir()}
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	opts := isolate(t)

	cfg, path, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	want := DefaultConfig()
	if cfg.Toolchain != want.Toolchain || cfg.BuildScript != want.BuildScript || cfg.UI != want.UI {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if len(cfg.Features) != 0 || cfg.NoDefaultFeatures {
		t.Errorf("feature selection = %v/%v, want empty", cfg.Features, cfg.NoDefaultFeatures)
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
}

func TestLoadSearchOrder(t *testing.T) {
	opts := isolate(t)
	dirFile := filepath.Join(opts.ConfigDirPath, ConfigFileName)
	localFile := filepath.Join(opts.BaseDir, LocalConfigFileName)
	writeConfig(t, localFile, `toolchain: rustc: "/local/rustc"`)

	cfg, path, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if path != localFile || cfg.Toolchain.Rustc != "/local/rustc" {
		t.Errorf("local file: path=%q rustc=%q", path, cfg.Toolchain.Rustc)
	}

	writeConfig(t, dirFile, `toolchain: rustc: "/dir/rustc"`)
	cfg, path, err = NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if path != dirFile || cfg.Toolchain.Rustc != "/dir/rustc" {
		t.Errorf("config dir wins over local: path=%q rustc=%q", path, cfg.Toolchain.Rustc)
	}

	explicit := filepath.Join(t.TempDir(), "explicit.cue")
	writeConfig(t, explicit, `toolchain: rustc: "/explicit/rustc"`)
	opts.ConfigFilePath = explicit
	cfg, path, err = NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if path != explicit || cfg.Toolchain.Rustc != "/explicit/rustc" {
		t.Errorf("--config wins: path=%q rustc=%q", path, cfg.Toolchain.Rustc)
	}
	if cfg.Toolchain.Cargo != "cargo" {
		t.Errorf("unset keys keep defaults, cargo = %q", cfg.Toolchain.Cargo)
	}
}

func TestLoadLocalFromWorkingDir(t *testing.T) {
	opts := isolate(t)
	opts.BaseDir = ""
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, LocalConfigFileName), `ui: color: "never"`)
	t.Cleanup(testutil.MustChdir(t, dir))

	cfg, path, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if path != LocalConfigFileName || cfg.UI.Color != ColorNever {
		t.Errorf("path=%q color=%q", path, cfg.UI.Color)
	}
}

func TestLoadFullFile(t *testing.T) {
	opts := isolate(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "c.cue")
	writeConfig(t, opts.ConfigFilePath, `
features: ["std", "derive"]
no_default_features: true
build_script: num_jobs: 8
ui: {
	verbose: true
	color:   "never"
}
log: level: "warn"
`)

	cfg, _, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !slices.Equal(cfg.Features, []string{"std", "derive"}) || !cfg.NoDefaultFeatures {
		t.Errorf("features = %v/%v", cfg.Features, cfg.NoDefaultFeatures)
	}
	if cfg.BuildScript.NumJobs != 8 {
		t.Errorf("num_jobs = %d, want 8", cfg.BuildScript.NumJobs)
	}
	if cfg.UI.Color != ColorNever || !cfg.UI.Verbose {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("LogLevel() = %q, explicit level wins over verbose", cfg.LogLevel())
	}
}

func TestLoadEnvironment(t *testing.T) {
	opts := isolate(t)
	t.Setenv(FeaturesEnv, "  alpha beta ")
	t.Setenv(NoDefaultFeaturesEnv, "1")
	t.Setenv("CARGOSHIM_TOOLCHAIN_RUSTC", "/env/rustc")
	t.Setenv("CARGOSHIM_UI_COLOR", "always")

	cfg, _, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !slices.Equal(cfg.Features, []string{"alpha", "beta"}) {
		t.Errorf("Features = %q", cfg.Features)
	}
	if !cfg.NoDefaultFeatures {
		t.Error("noDefaultFeatures=1 should disable default features")
	}
	if cfg.Toolchain.Rustc != "/env/rustc" || cfg.UI.Color != ColorAlways {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestNoDefaultFeaturesOnlyOne(t *testing.T) {
	opts := isolate(t)
	t.Setenv(NoDefaultFeaturesEnv, "true")

	cfg, _, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NoDefaultFeatures {
		t.Error(`only "1" disables default features`)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "syntax", body: "ui: {", want: "c.cue"},
		{name: "unknown key", body: `colour: "never"`, want: "colour"},
		{name: "bad color", body: `ui: color: "sometimes"`, want: "color"},
		{name: "zero jobs", body: `build_script: num_jobs: 0`, want: "num_jobs"},
		{name: "bad env color", env: map[string]string{"CARGOSHIM_UI_COLOR": "pink"}, want: "invalid color mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts.ConfigFilePath = filepath.Join(t.TempDir(), "c.cue")
			writeConfig(t, opts.ConfigFilePath, tt.body)

			_, _, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("error should be actionable, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	opts := isolate(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, _, err := NewProvider().Load(context.Background(), opts)
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %v, want config file not found", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	opts := isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewProvider().Load(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	opts := isolate(t)
	cfg := DefaultConfig()
	cfg.Features = []string{"a", "b"}
	cfg.Toolchain.Rustc = "/opt/rust/bin/rustc"
	cfg.Log.Level = "debug"

	opts.ConfigFilePath = filepath.Join(t.TempDir(), "dump.cue")
	writeConfig(t, opts.ConfigFilePath, GenerateCUE(cfg))

	got, _, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("generated CUE does not load: %v\n%s", err, GenerateCUE(cfg))
	}
	if !slices.Equal(got.Features, cfg.Features) || got.Toolchain != cfg.Toolchain || got.Log != cfg.Log {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UI.Color = "pink"
	cfg.BuildScript.NumJobs = 0
	cfg.Log.Level = "trace"
	err := cfg.Validate()
	for _, target := range []error{ErrInvalidColorMode, ErrInvalidNumJobs, ErrInvalidLogLevel} {
		if !errors.Is(err, target) {
			t.Errorf("Validate() = %v, should include %v", err, target)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestConfigDirXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME applies on Linux only")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(base, AppName) {
		t.Errorf("ConfigDir() = %q", dir)
	}
}

func TestConfigDirHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME applies on Linux only")
	}
	home := t.TempDir()
	testutil.SetHomeDir(t, home)
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}
