// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/process"
	"github.com/cargoshim/cargoshim/internal/sidecar"
	"github.com/cargoshim/cargoshim/internal/toolchain"
)

var (
	// ErrScriptReportedError is returned after a script that exited cleanly
	// printed an error directive. The result has been written by then.
	ErrScriptReportedError = errors.New("build script reported error")
	// ErrMetadataWithoutLinks is returned when a script emits metadata for a
	// package without a links token.
	ErrMetadataWithoutLinks = sidecar.ErrMetadataWithoutLinks
)

// Options configures one build-script run.
type Options struct {
	// Script is the compiled build-script binary.
	Script  string
	Cargo   string
	Rustc   string
	Rustdoc string
	// Src is the source root the info record's paths are relative to.
	Src string
	// InfoPath is the JSON crate.Common record of the package.
	InfoPath string
	// Out is the run directory; OUT_DIR is its "output" subdirectory and the
	// result is written next to it.
	Out     string
	NumJobs int

	// Environ overrides the inherited environment, for tests.
	Environ func() []string
	// Stdout receives progress; Stderr receives the script's own stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Color is one of ColorAuto, ColorAlways or ColorNever.
	Color  string
	Logger *log.Logger
}

// Run executes the build script described by opts and writes result.toml.
func Run(ctx context.Context, opts Options) error {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	outDir := filepath.Join(opts.Out, sidecar.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating script output dir: %w", err)
	}
	info, err := crate.LoadCommon(opts.InfoPath)
	if err != nil {
		return err
	}

	host, err := toolchain.HostTuple(ctx, opts.Rustc)
	if err != nil {
		return err
	}
	targetCfg, err := toolchain.TargetCfg(ctx, opts.Rustc, info.Target)
	if err != nil {
		return err
	}
	env, err := Environment(info, EnvOptions{
		Cargo:     opts.Cargo,
		Rustc:     opts.Rustc,
		Rustdoc:   opts.Rustdoc,
		Src:       opts.Src,
		OutDir:    outDir,
		Host:      host,
		TargetCfg: targetCfg,
		NumJobs:   opts.NumJobs,
	})
	if err != nil {
		return err
	}

	cmd := process.New(opts.Script)
	cmd.Env = env
	cmd.Unset = []string{"RUSTFLAGS"}
	cmd.Dir = env["CARGO_MANIFEST_DIR"]
	cmd.Environ = opts.Environ
	cmd.Stderr = stderr
	logger.Debug("executing build script", "package", info.Pname, "command", cmd.String())

	collector, err := execute(ctx, cmd, NewPrinter(stdout, opts.Color))
	if err != nil {
		return err
	}

	if len(collector.Result.Metadata) > 0 && !info.HasLinks() {
		return fmt.Errorf("%w: build script of %s", ErrMetadataWithoutLinks, info.Pname)
	}
	if err := collector.Result.Write(opts.Out); err != nil {
		return fmt.Errorf("writing build script result: %w", err)
	}
	if collector.Failed() {
		return fmt.Errorf("%w: %s", ErrScriptReportedError, info.Pname)
	}
	return nil
}

// execute runs cmd, parsing stdout line by line until the script exits.
func execute(ctx context.Context, cmd *process.Command, printer *Printer) (*Collector, error) {
	c := cmd.Cmd(ctx)
	pipe, err := c.StdoutPipe()
	if err != nil {
		return nil, cmd.Wrap(err)
	}
	if err := c.Start(); err != nil {
		return nil, cmd.Wrap(err)
	}

	collector := NewCollector()
	reader := bufio.NewReader(pipe)
	var readErr error
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			d := ParseDirective(line)
			collector.Apply(d)
			printer.Line(line, d)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
				_, _ = io.Copy(io.Discard, pipe)
			}
			break
		}
	}

	if err := c.Wait(); err != nil {
		return nil, cmd.Wrap(err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading build script output: %w", readErr)
	}
	return collector, nil
}
