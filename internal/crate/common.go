// SPDX-License-Identifier: MPL-2.0

package crate

import (
	"fmt"
	"path/filepath"
)

type (
	// Dep is one resolved dependency edge as the orchestrator hands it over:
	// the name the dependent uses for it and the output directory of the job
	// that built it.
	Dep struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}

	// Common is the per-package part of a job. It is the complete input of a
	// build-script run and is embedded in every compile Job.
	Common struct {
		RustcFlags   []string `json:"rustcFlags"`
		Cfgs         []string `json:"cfgs"`
		LinkArgs     []string `json:"linkArgs"`
		ManifestPath string   `json:"manifestPath"`
		Version      string   `json:"version"`
		Authors      string   `json:"authors,omitempty"`
		Pname        string   `json:"pname"`
		Description  string   `json:"description,omitempty"`
		Homepage     string   `json:"homepage,omitempty"`
		Repository   string   `json:"repository,omitempty"`
		License      string   `json:"license,omitempty"`
		LicenseFile  string   `json:"licenseFile,omitempty"`
		RustVersion  string   `json:"rustVersion,omitempty"`
		Readme       string   `json:"readme,omitempty"`
		Target       string   `json:"target"`
		Features     []string `json:"features"`
		AllFeatures  []string `json:"allFeatures"`
		CrateName    string   `json:"crateName"`
		Edition      Edition  `json:"edition"`
		Deps         []Dep    `json:"deps"`
		// Links is the package's native library token; empty means none.
		Links     string `json:"links,omitempty"`
		Optimize  bool   `json:"optimize"`
		Debuginfo bool   `json:"debuginfo"`
	}
)

// HasLinks reports whether the package declares a links token.
func (c *Common) HasLinks() bool { return c.Links != "" }

// MetadataEnv returns the CARGO_* variables describing the package that both
// build scripts and rustc (for env!) observe. src is the source root the
// manifest path is relative to; cargo is the path exported as CARGO.
func (c *Common) MetadataEnv(cargo, src string) (map[string]string, error) {
	version, err := ParseVersion(c.Version)
	if err != nil {
		return nil, fmt.Errorf("parsing crate version: %w", err)
	}
	manifestPath := filepath.Join(src, c.ManifestPath)

	return map[string]string{
		"CARGO":                   cargo,
		"CARGO_MANIFEST_DIR":      filepath.Dir(manifestPath),
		"CARGO_MANIFEST_PATH":     manifestPath,
		"CARGO_PKG_VERSION":       c.Version,
		"CARGO_PKG_VERSION_MAJOR": version.Major,
		"CARGO_PKG_VERSION_MINOR": version.Minor,
		"CARGO_PKG_VERSION_PATCH": version.Patch,
		"CARGO_PKG_VERSION_PRE":   version.Pre,
		"CARGO_PKG_AUTHORS":       c.Authors,
		"CARGO_PKG_NAME":          c.Pname,
		"CARGO_PKG_DESCRIPTION":   c.Description,
		"CARGO_PKG_HOMEPAGE":      c.Homepage,
		"CARGO_PKG_REPOSITORY":    c.Repository,
		"CARGO_PKG_LICENSE":       c.License,
		"CARGO_PKG_LICENSE_FILE":  joinOptional(src, c.LicenseFile),
		"CARGO_PKG_RUST_VERSION":  c.RustVersion,
		"CARGO_PKG_README":        joinOptional(src, c.Readme),
		"CARGO_CRATE_NAME":        c.CrateName,
	}, nil
}

func joinOptional(base, p string) string {
	if p == "" {
		return ""
	}
	return filepath.Join(base, p)
}
