// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/sidecar"
)

// EnvOptions are the facts about the invocation that the job record does not
// carry itself.
type EnvOptions struct {
	Cargo   string
	Rustc   string
	Rustdoc string
	// Src is the source root manifest paths are relative to.
	Src string
	// OutDir is exported as OUT_DIR.
	OutDir string
	// Host is the host tuple reported by rustc.
	Host string
	// TargetCfg is the `rustc --print=cfg` output for the job's target.
	TargetCfg string
	// NumJobs is exported as NUM_JOBS; values below 1 mean 1.
	NumJobs int
}

// Environment returns the variables a build script for info expects, on top
// of the inherited environment minus RUSTFLAGS.
func Environment(info *crate.Common, opts EnvOptions) (map[string]string, error) {
	outDir, err := crate.RequireUTF8(opts.OutDir)
	if err != nil {
		return nil, err
	}
	numJobs := max(opts.NumJobs, 1)

	env := map[string]string{
		"CARGO_MAKEFLAGS":         "",
		"OUT_DIR":                 outDir,
		"TARGET":                  info.Target,
		"HOST":                    opts.Host,
		"NUM_JOBS":                strconv.Itoa(numJobs),
		"RUSTC":                   opts.Rustc,
		"RUSTDOC":                 opts.Rustdoc,
		"CARGO_ENCODED_RUSTFLAGS": strings.Join(info.RustcFlags, "\x1f"),
	}

	meta, err := info.MetadataEnv(opts.Cargo, opts.Src)
	if err != nil {
		return nil, err
	}
	maps.Copy(env, meta)

	if info.HasLinks() {
		env["CARGO_MANIFEST_LINKS"] = info.Links
	}
	if info.Optimize {
		env["OPT_LEVEL"], env["PROFILE"] = "3", "release"
	} else {
		env["OPT_LEVEL"], env["PROFILE"] = "1", "debug"
	}
	env["DEBUG"] = strconv.FormatBool(info.Debuginfo)

	cfgs, err := resolveCfgs(info, opts.TargetCfg)
	if err != nil {
		return nil, err
	}
	maps.Copy(env, cfgs.Env())

	for _, f := range info.Features {
		env["CARGO_FEATURE_"+strings.ReplaceAll(strings.ToUpper(f), "-", "_")] = "1"
	}

	for _, dep := range info.Deps {
		rec, err := sidecar.ReadLibraryRecord(dep.Path)
		if err != nil {
			return nil, fmt.Errorf("reading metadata of dependency %s: %w", dep.Name, err)
		}
		depEnv, err := rec.DepEnv()
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", dep.Name, err)
		}
		maps.Copy(env, depEnv)
	}
	return env, nil
}

// resolveCfgs merges the target's default cfgs with the job's own. The
// feature cfg is seeded from the enabled features.
func resolveCfgs(info *crate.Common, targetCfg string) (CfgSet, error) {
	set := CfgSet{}
	for _, f := range info.Features {
		set.Add(CfgOption{Name: "feature", Value: f, HasValue: true})
	}
	if len(info.Features) == 0 {
		set.Add(CfgOption{Name: "feature"})
	}

	defaults, err := ParseCfgList(targetCfg)
	if err != nil {
		return nil, fmt.Errorf("parsing rustc cfg output: %w", err)
	}
	for _, opt := range defaults {
		set.Add(opt)
	}
	for _, c := range info.Cfgs {
		opt, err := ParseCfg(c)
		if err != nil {
			return nil, err
		}
		set.Add(opt)
	}
	return set, nil
}
