// SPDX-License-Identifier: MPL-2.0

package sidecar

import "path/filepath"

// BuildScriptResult is everything a build script asked for, as collected
// from its directives. Link arguments are partitioned by the crate types
// they apply to.
type BuildScriptResult struct {
	Metadata       map[string]string   `toml:"metadata"`
	LinkArgs       []string            `toml:"linkArgs"`
	LinkArgsCdylib []string            `toml:"linkArgsCdylib"`
	LinkArgsBins   []string            `toml:"linkArgsBins"`
	LinkArgsBin    map[string][]string `toml:"linkArgsBin"`
	LinkLib        []string            `toml:"linkLib"`
	LibPath        []string            `toml:"libPath"`
	Flags          []string            `toml:"flags"`
	Cfgs           []string            `toml:"cfgs"`
	CheckCfgs      []string            `toml:"checkCfgs"`
	Envs           map[string]string   `toml:"envs"`
}

// NewBuildScriptResult returns an empty result with every collection allocated.
func NewBuildScriptResult() *BuildScriptResult {
	return &BuildScriptResult{
		Metadata:       map[string]string{},
		LinkArgs:       []string{},
		LinkArgsCdylib: []string{},
		LinkArgsBins:   []string{},
		LinkArgsBin:    map[string][]string{},
		LinkLib:        []string{},
		LibPath:        []string{},
		Flags:          []string{},
		Cfgs:           []string{},
		CheckCfgs:      []string{},
		Envs:           map[string]string{},
	}
}

// ReadBuildScriptResult reads result.toml from a build-script run directory.
func ReadBuildScriptResult(runDir string) (*BuildScriptResult, error) {
	r := NewBuildScriptResult()
	if err := readTOML(filepath.Join(runDir, ResultFile), r); err != nil {
		return nil, err
	}
	return r, nil
}

// Write stores the result as result.toml in runDir. LibPath is a set.
func (r *BuildScriptResult) Write(runDir string) error {
	out := *r
	out.LibPath = SortedSet(r.LibPath)
	return writeTOML(filepath.Join(runDir, ResultFile), &out)
}
