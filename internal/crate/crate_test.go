// SPDX-License-Identifier: MPL-2.0

package crate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "1.2.3", want: Version{Major: "1", Minor: "2", Patch: "3"}},
		{in: "0.10.0-beta.2", want: Version{Major: "0", Minor: "10", Patch: "0", Pre: "beta.2"}},
		{in: "1.0.0+build.5", want: Version{Major: "1", Minor: "0", Patch: "0"}},
		{in: "1.2", wantErr: true},
		{in: "", wantErr: true},
		{in: "banana", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("error does not wrap ErrInvalidVersion: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCrateTypeValidate(t *testing.T) {
	t.Parallel()

	for _, ct := range []CrateType{CrateTypeBin, CrateTypeLib, CrateTypeProcMacro, CrateTypeCdylib} {
		if err := ct.Validate(); err != nil {
			t.Errorf("%s.Validate() error: %v", ct, err)
		}
	}
	err := CrateType("staticlib").Validate()
	if !errors.Is(err, ErrInvalidCrateType) {
		t.Errorf("Validate() error = %v, want ErrInvalidCrateType", err)
	}
	if CrateTypeLib.Linkable() || !CrateTypeProcMacro.Linkable() {
		t.Error("only bin, cdylib and proc-macro are linked")
	}
}

func TestMetadataEnv(t *testing.T) {
	t.Parallel()

	c := &Common{
		ManifestPath: "vendor-foo/Cargo.toml",
		Version:      "1.4.2-rc.1",
		Authors:      "A <a@example.com>:B",
		Pname:        "foo-bar",
		LicenseFile:  "vendor-foo/LICENSE",
		CrateName:    "foo_bar",
	}
	env, err := c.MetadataEnv("/bin/cargo", "/src")
	if err != nil {
		t.Fatalf("MetadataEnv() error: %v", err)
	}
	want := map[string]string{
		"CARGO":                   "/bin/cargo",
		"CARGO_MANIFEST_PATH":     "/src/vendor-foo/Cargo.toml",
		"CARGO_MANIFEST_DIR":      "/src/vendor-foo",
		"CARGO_PKG_VERSION_MAJOR": "1",
		"CARGO_PKG_VERSION_MINOR": "4",
		"CARGO_PKG_VERSION_PATCH": "2",
		"CARGO_PKG_VERSION_PRE":   "rc.1",
		"CARGO_PKG_AUTHORS":       "A <a@example.com>:B",
		"CARGO_PKG_NAME":          "foo-bar",
		"CARGO_PKG_LICENSE_FILE":  "/src/vendor-foo/LICENSE",
		"CARGO_PKG_README":        "",
		"CARGO_PKG_HOMEPAGE":      "",
		"CARGO_CRATE_NAME":        "foo_bar",
	}
	for k, v := range want {
		got, ok := env[k]
		if !ok || got != v {
			t.Errorf("%s = %q (set %v), want %q", k, got, ok, v)
		}
	}
}

func TestLoadJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	data := `{
		"rustcFlags": [], "cfgs": [], "linkArgs": [],
		"manifestPath": "Cargo.toml", "version": "0.1.0", "pname": "demo",
		"target": "x86_64-unknown-linux-gnu", "features": ["std"], "allFeatures": ["std"],
		"crateName": "demo", "edition": "2021", "deps": [{"name": "log", "path": "/out/log"}],
		"optimize": true, "debuginfo": false,
		"crateType": "lib", "entrypoint": "src/lib.rs", "targetName": "demo",
		"mainWorkspace": true
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob() error: %v", err)
	}
	if job.CrateType != CrateTypeLib || job.Pname != "demo" || job.Edition != Edition2021 {
		t.Errorf("unexpected job %+v", job)
	}
	if len(job.Deps) != 1 || job.Deps[0].Path != "/out/log" {
		t.Errorf("Deps = %+v", job.Deps)
	}
}

func TestLoadJobErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"crateType": `},
		{"unknown crate type", `{"crateType": "staticlib", "edition": "2021"}`},
		{"unknown edition", `{"crateType": "lib", "edition": "2027"}`},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+".json")
		if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadJob(path); !errors.Is(err, ErrDecodeJob) {
			t.Errorf("%s: error = %v, want ErrDecodeJob", tt.name, err)
		}
	}
	if _, err := LoadJob(filepath.Join(dir, "absent.json")); !errors.Is(err, ErrDecodeJob) {
		t.Errorf("missing file: error = %v, want ErrDecodeJob", err)
	}
}

func TestRequireUTF8(t *testing.T) {
	t.Parallel()

	if _, err := RequireUTF8("/out/\xff"); !errors.Is(err, ErrNonUTF8Path) {
		t.Errorf("error = %v, want ErrNonUTF8Path", err)
	}
	if p, err := RequireUTF8("/out/ok"); err != nil || p != "/out/ok" {
		t.Errorf("RequireUTF8() = %q, %v", p, err)
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	if got := NormalizeName("serde-json-core"); got != "serde_json_core" {
		t.Errorf("NormalizeName() = %q", got)
	}
}
