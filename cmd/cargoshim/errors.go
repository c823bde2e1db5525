// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"

	"github.com/cargoshim/cargoshim/internal/buildscript"
	"github.com/cargoshim/cargoshim/internal/config"
	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/dag"
	"github.com/cargoshim/cargoshim/internal/issue"
	"github.com/cargoshim/cargoshim/internal/resolve"
	"github.com/cargoshim/cargoshim/internal/sidecar"
	"github.com/cargoshim/cargoshim/internal/toolchain"
	"github.com/cargoshim/cargoshim/internal/vendor"
)

// issueError tags an error with the catalog entry a command falls back to
// when no more specific class matches.
type issueError struct {
	id  issue.Id
	err error
}

func withIssue(id issue.Id, err error) error {
	if err == nil {
		return nil
	}
	return &issueError{id: id, err: err}
}

func (e *issueError) Error() string { return e.err.Error() }

func (e *issueError) Unwrap() error { return e.err }

// classes is checked in order; the first sentinel in the chain wins.
var classes = []struct {
	target error
	id     issue.Id
}{
	{dag.ErrCycle, issue.DependencyCycleId},
	{resolve.ErrStructural, issue.UnsupportedPackageId},
	{buildscript.ErrMetadataWithoutLinks, issue.BuildScriptFailedId},
	{buildscript.ErrScriptReportedError, issue.BuildScriptFailedId},
	{resolve.ErrInvalidMetadata, issue.MetadataFailedId},
	{crate.ErrDecodeJob, issue.JobDecodeFailedId},
	{crate.ErrNonUTF8Path, issue.JobDecodeFailedId},
	{sidecar.ErrDecodeRecord, issue.JobDecodeFailedId},
	{toolchain.ErrQueryFailed, issue.ToolchainFailedId},
	{toolchain.ErrNonUTF8Output, issue.ToolchainFailedId},
	{vendor.ErrInvalidLockfile, issue.LockfileInvalidId},
	{vendor.ErrUnsafePath, issue.UnsafeArchiveId},
	{vendor.ErrUnknownArchive, issue.UnsafeArchiveId},
}

// classify returns the catalog entry describing err.
func classify(err error) (issue.Id, bool) {
	for _, c := range classes {
		if errors.Is(err, c.target) {
			return c.id, true
		}
	}
	var ie *issueError
	if errors.As(err, &ie) {
		return ie.id, true
	}
	return 0, false
}

// formatErrorForDisplay uses ActionableError.Format when the chain has one.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// errorHandler prints err and, in verbose mode, the troubleshooting note
// of its class.
func (a *App) errorHandler(w io.Writer, _ fang.Styles, err error) {
	fmt.Fprintln(w, ErrorStyle.Render("error:")+" "+formatErrorForDisplay(err, a.verbose))
	if !a.verbose {
		return
	}
	id, ok := classify(err)
	if !ok {
		return
	}
	style := "auto"
	if a.cfg != nil && a.cfg.UI.Color == config.ColorNever {
		style = "notty"
	}
	rendered, rerr := issue.Get(id).Render(style)
	if rerr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}
