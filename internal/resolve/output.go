// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cargoshim/cargoshim/internal/crate"
)

type (
	// Output is the resolver's result file.
	Output struct {
		Packages map[string]*ResolvedPackage `json:"packages"`
		// Workspace maps workspace member names to package ids.
		Workspace   map[string]string `json:"workspace"`
		MainPackage *string           `json:"mainPackage"`
		// BuildOrder lists every package after all of its dependencies.
		BuildOrder []string `json:"buildOrder"`
	}

	// ResolvedPackage is one package with its compile jobs. RustLib holds a
	// lib or proc-macro target, CLib a cdylib; at most one of them is set.
	ResolvedPackage struct {
		Common      Common          `json:"common"`
		BuildScript *BuildScriptJob `json:"buildScript"`
		RustLib     *Job            `json:"rustLib"`
		CLib        *Job            `json:"cLib"`
		Bins        []Job           `json:"bins"`
	}

	// Common is the per-package description shared by all of its jobs.
	// Absent optional fields are written as null.
	Common struct {
		ManifestPath  string        `json:"manifestPath"`
		Version       string        `json:"version"`
		Authors       *string       `json:"authors"`
		Pname         string        `json:"pname"`
		Description   *string       `json:"description"`
		Homepage      *string       `json:"homepage"`
		Repository    *string       `json:"repository"`
		License       *string       `json:"license"`
		LicenseFile   *string       `json:"licenseFile"`
		RustVersion   *string       `json:"rustVersion"`
		Readme        *string       `json:"readme"`
		Target        string        `json:"target"`
		Features      []string      `json:"features"`
		AllFeatures   []string      `json:"allFeatures"`
		Edition       crate.Edition `json:"edition"`
		MainWorkspace bool          `json:"mainWorkspace"`
		Links         *string       `json:"links"`
	}

	// Dep is a dependency edge by the name the dependent uses.
	Dep struct {
		Name string `json:"name"`
		Pkg  string `json:"pkg"`
	}

	// Job is one compile target of a package.
	Job struct {
		TargetName string          `json:"targetName"`
		CrateName  string          `json:"crateName"`
		Deps       []Dep           `json:"deps"`
		CrateType  crate.CrateType `json:"crateType"`
		Entrypoint string          `json:"entrypoint"`
	}

	// BuildScriptJob compiles build-script-build. Its Deps are the build-time
	// edges; MainDeps are the normal edges of the package it configures.
	BuildScriptJob struct {
		MainDeps      []Dep  `json:"mainDeps"`
		MainCrateName string `json:"mainCrateName"`
		Job
	}
)

// Write stores the output as JSON at path.
func (o *Output) Write(path string) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("serializing output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
