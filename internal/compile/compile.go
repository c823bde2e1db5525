// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/process"
	"github.com/cargoshim/cargoshim/internal/sidecar"
)

// Options are the paths a compile job runs against.
type Options struct {
	// Src is the source root entrypoints and manifests are relative to.
	Src   string
	Cargo string
	Rustc string
	// Out is the job's private output directory.
	Out string

	// Environ overrides the inherited environment, for tests.
	Environ func() []string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *log.Logger
}

// Run loads the job at jobPath, synthesizes its rustc command and runs it.
// A failing rustc is reported as a *process.CommandError carrying its exit
// code.
func Run(ctx context.Context, jobPath string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	job, err := crate.LoadJob(jobPath)
	if err != nil {
		return err
	}
	cmd, err := Synthesize(job, opts)
	if err != nil {
		return err
	}
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	logger.Debug("executing rustc", "crate", job.CrateName, "type", job.CrateType, "command", cmd.String())
	return cmd.Run(ctx)
}

// Synthesize builds the rustc command for job and prepares its output
// layout under opts.Out.
func Synthesize(job *crate.Job, opts Options) (*process.Command, error) {
	if err := job.CrateType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", crate.ErrDecodeJob, err)
	}
	if err := mergeBuildScript(job); err != nil {
		return nil, err
	}
	job.LibPath = append(job.LibPath, libPathFromEnv(opts.Environ)...)

	cmd, err := commonCommand(job, opts)
	if err != nil {
		return nil, err
	}

	switch job.CrateType {
	case crate.CrateTypeBin:
		err = placeBin(job, cmd, opts.Out)
	case crate.CrateTypeLib:
		err = placeLib(job, cmd, opts.Out)
	case crate.CrateTypeProcMacro:
		err = placeProcMacro(job, cmd, opts.Out)
	case crate.CrateTypeCdylib:
		err = placeCdylib(job, cmd, opts.Out)
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// mergeBuildScript folds the result of the package's build-script run into
// the job. Link arguments are routed by crate type.
func mergeBuildScript(job *crate.Job) error {
	if job.BuildScriptRun == "" {
		return nil
	}
	res, err := sidecar.ReadBuildScriptResult(job.BuildScriptRun)
	if err != nil {
		return fmt.Errorf("reading build script result: %w", err)
	}

	job.Metadata = res.Metadata
	job.LibPath = res.LibPath
	job.LinkLib = append(job.LinkLib, res.LinkLib...)
	job.RustcFlags = append(job.RustcFlags, res.Flags...)
	job.Cfgs = append(job.Cfgs, res.Cfgs...)
	job.LinkArgs = append(job.LinkArgs, res.LinkArgs...)
	switch job.CrateType {
	case crate.CrateTypeCdylib:
		job.LinkArgs = append(job.LinkArgs, res.LinkArgsCdylib...)
	case crate.CrateTypeBin:
		job.LinkArgs = append(job.LinkArgs, res.LinkArgsBins...)
		job.LinkArgs = append(job.LinkArgs, res.LinkArgsBin[job.Pname]...)
	}
	job.CheckCfgs = res.CheckCfgs
	job.Envs = res.Envs
	if job.Envs == nil {
		job.Envs = map[string]string{}
	}

	outDir, err := crate.RequireUTF8(filepath.Join(job.BuildScriptRun, sidecar.OutputDir))
	if err != nil {
		return err
	}
	job.Envs["OUT_DIR"] = outDir
	return nil
}

func libPathFromEnv(environ func() []string) []string {
	if environ == nil {
		environ = os.Environ
	}
	var paths []string
	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key != "LD_LIBRARY_PATH" {
			continue
		}
		for p := range strings.SplitSeq(value, ":") {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func commonCommand(job *crate.Job, opts Options) (*process.Command, error) {
	meta, err := job.MetadataEnv(opts.Cargo, opts.Src)
	if err != nil {
		return nil, err
	}

	cmd := process.New(opts.Rustc,
		"--crate-name", job.CrateName,
		"--edition="+job.Edition.String(),
		filepath.Join(opts.Src, job.Entrypoint),
		"--check-cfg", "cfg(docsrs,test)",
		"-C", "embed-bitcode=no",
		"--cap-lints", "allow",
		"--target", job.Target,
		"--emit", "link",
		"--crate-type", job.CrateType.String(),
	)
	cmd.Environ = opts.Environ
	maps.Copy(cmd.Env, meta)
	maps.Copy(cmd.Env, job.Envs)

	cmd.Arg(job.RustcFlags...)
	for _, cfg := range job.Cfgs {
		cmd.Arg("--cfg", cfg)
	}
	for _, cfg := range job.CheckCfgs {
		cmd.Arg("--check-cfg", cfg)
	}

	for _, dep := range job.Deps {
		rec, err := sidecar.ReadLibraryRecord(dep.Path)
		if err != nil {
			return nil, fmt.Errorf("reading rust lib metadata of %s: %w", dep.Name, err)
		}
		cmd.Arg("--extern", dep.Name+"="+rec.Lib)
		job.LibPath = append(job.LibPath, rec.LibPath...)
		job.AllDeps = append(job.AllDeps, dep.Path)
		job.AllDeps = append(job.AllDeps, rec.Deps...)
	}
	job.LibPath = sidecar.SortedSet(job.LibPath)
	job.AllDeps = sidecar.SortedSet(job.AllDeps)

	if job.CrateType.Linkable() {
		for _, arg := range job.LinkArgs {
			cmd.Arg("-C", "link-arg="+arg)
		}
		for _, p := range job.LibPath {
			cmd.Arg("-L", p)
		}
	}
	for _, lib := range job.LinkLib {
		cmd.Arg("-l", lib)
	}
	for _, dep := range job.AllDeps {
		cmd.Arg("-L", "dependency="+dep)
	}

	for _, f := range job.Features {
		cmd.Arg("--cfg", `feature="`+f+`"`)
	}
	cmd.Arg("--check-cfg", featureCheckCfg(job.AllFeatures))

	if job.Debuginfo {
		cmd.Arg("-C", "debuginfo=2")
	} else {
		cmd.Arg("-C", "strip=debuginfo")
	}
	if job.Optimize {
		cmd.Arg("-C", "opt-level=3")
	}
	return cmd, nil
}

// featureCheckCfg declares every feature of the package, enabled or not.
func featureCheckCfg(all []string) string {
	quoted := make([]string, len(all))
	for i, f := range all {
		quoted[i] = `"` + f + `"`
	}
	return "cfg(feature, values(" + strings.Join(quoted, ", ") + "))"
}
