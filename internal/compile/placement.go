// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/process"
	"github.com/cargoshim/cargoshim/internal/sidecar"
)

const dirPerm = 0o755

func placeBin(job *crate.Job, cmd *process.Command, out string) error {
	bin := filepath.Join(out, "bin")
	if err := os.MkdirAll(bin, dirPerm); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	cmd.Dir = bin
	cmd.Arg("-o", job.TargetName)
	cmd.Setenv("CARGO_BIN_NAME", job.TargetName)
	return nil
}

func placeLib(job *crate.Job, cmd *process.Command, out string) error {
	hash, err := hashedOutput(job, cmd, out)
	if err != nil {
		return err
	}
	rec := &sidecar.LibraryRecord{
		Lib:      filepath.Join(out, fmt.Sprintf("lib%s-%s.rlib", job.CrateName, hash)),
		Deps:     job.AllDeps,
		Metadata: job.Metadata,
		LibPath:  job.LibPath,
		Links:    job.Links,
	}
	if err := rec.Write(out); err != nil {
		return fmt.Errorf("writing library metadata of %s: %w", job.Pname, err)
	}
	return nil
}

// placeProcMacro records no closure or metadata: rustc loads the plugin
// itself and nothing links against it.
func placeProcMacro(job *crate.Job, cmd *process.Command, out string) error {
	hash, err := hashedOutput(job, cmd, out)
	if err != nil {
		return err
	}
	cmd.Arg("--extern", "proc_macro")
	rec := &sidecar.LibraryRecord{
		Lib: filepath.Join(out, fmt.Sprintf("lib%s-%s.so", job.CrateName, hash)),
	}
	if err := rec.Write(out); err != nil {
		return fmt.Errorf("writing library metadata of %s: %w", job.Pname, err)
	}
	return nil
}

func hashedOutput(job *crate.Job, cmd *process.Command, out string) (string, error) {
	if err := os.MkdirAll(out, dirPerm); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	hash := sidecar.ArtifactHash(job.Pname, job.Version, job.Features)
	cmd.Arg(
		"-C", "metadata="+hash,
		"-C", "extra-filename=-"+hash,
		"--out-dir", out,
	)
	return hash, nil
}

// placeCdylib writes lib<name>.so.<major>.<minor>.<patch> and points
// lib<name>.so.<major> and lib<name>.so at it.
func placeCdylib(job *crate.Job, cmd *process.Command, out string) error {
	libDir := filepath.Join(out, "lib")
	if err := os.MkdirAll(libDir, dirPerm); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	version, err := crate.ParseVersion(job.Version)
	if err != nil {
		return fmt.Errorf("parsing crate version: %w", err)
	}

	name := "lib" + job.TargetName + ".so"
	full := name + "." + version.Triple()
	cmd.Dir = libDir
	cmd.Arg("-o", filepath.Join(libDir, full))

	for _, link := range []string{name, name + "." + version.Major} {
		if err := replaceSymlink(full, filepath.Join(libDir, link)); err != nil {
			return err
		}
	}
	return nil
}

func replaceSymlink(target, link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("creating symlink %s: %w", link, err)
	}
	return nil
}
