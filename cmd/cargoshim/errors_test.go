// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/cargoshim/cargoshim/internal/buildscript"
	"github.com/cargoshim/cargoshim/internal/config"
	"github.com/cargoshim/cargoshim/internal/dag"
	"github.com/cargoshim/cargoshim/internal/issue"
	"github.com/cargoshim/cargoshim/internal/process"
	"github.com/cargoshim/cargoshim/internal/resolve"
	"github.com/cargoshim/cargoshim/internal/vendor"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		wantID issue.Id
		wantOK bool
	}{
		{
			name:   "cycle wins over structural",
			err:    fmt.Errorf("%w: %w", resolve.ErrStructural, dag.ErrCycle),
			wantID: issue.DependencyCycleId,
			wantOK: true,
		},
		{
			name:   "structural",
			err:    fmt.Errorf("%w: pkg: more than one lib in crate", resolve.ErrStructural),
			wantID: issue.UnsupportedPackageId,
			wantOK: true,
		},
		{
			name:   "sentinel beats command fallback",
			err:    withIssue(issue.MetadataFailedId, fmt.Errorf("%w: x", vendor.ErrUnsafePath)),
			wantID: issue.UnsafeArchiveId,
			wantOK: true,
		},
		{
			name:   "build script error",
			err:    withIssue(issue.CompileFailedId, buildscript.ErrScriptReportedError),
			wantID: issue.BuildScriptFailedId,
			wantOK: true,
		},
		{
			name:   "command fallback",
			err:    withIssue(issue.CompileFailedId, errors.New("boom")),
			wantID: issue.CompileFailedId,
			wantOK: true,
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, ok := classify(tt.err)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("classify() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestWithIssueNil(t *testing.T) {
	t.Parallel()

	if err := withIssue(issue.CompileFailedId, nil); err != nil {
		t.Errorf("withIssue(nil) = %v, want nil", err)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	exitErr := exec.CommandContext(context.Background(), "sh", "-c", "exit 3").Run()
	var ee *exec.ExitError
	if !errors.As(exitErr, &ee) {
		t.Skipf("sh unavailable: %v", exitErr)
	}
	cmdErr := process.New("sh", "-c", "exit 3").Wrap(exitErr)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"child exit code", propagateExit(withIssue(issue.CompileFailedId, cmdErr)), 3},
		{"zero code", &ExitError{Code: 0, Err: errors.New("boom")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPropagateExitKeepsChain(t *testing.T) {
	t.Parallel()

	inner := withIssue(issue.CompileFailedId, &process.CommandError{Command: "rustc", ExitCode: 2, Err: errors.New("x")})
	err := propagateExit(inner)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("propagateExit() = %v, want ExitError with code 2", err)
	}
	if id, ok := classify(err); !ok || id != issue.CompileFailedId {
		t.Errorf("classify() = (%d, %v), want CompileFailedId", id, ok)
	}
	if !errors.Is(err, process.ErrCommandFailed) {
		t.Error("errors.Is(err, ErrCommandFailed) = false")
	}

	if got := propagateExit(errors.New("plain")); errors.As(got, &exitErr) {
		t.Error("plain errors must not become ExitError")
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	actionable := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("cargoshim.cue").
		WithSuggestion("Run 'cargoshim config dump' for a valid starting point").
		Wrap(errors.New("bad value")).
		BuildError()

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()
		app := NewApp(Dependencies{})
		var buf bytes.Buffer
		app.errorHandler(&buf, fang.Styles{}, withIssue(issue.ConfigLoadFailedId, actionable))

		out := buf.String()
		if !strings.Contains(out, "error: failed to load configuration: cargoshim.cue: bad value") {
			t.Errorf("missing message in %q", out)
		}
		if !strings.Contains(out, "cargoshim config dump") {
			t.Errorf("missing suggestion in %q", out)
		}
		if strings.Contains(out, "Error chain") {
			t.Errorf("error chain printed without --verbose: %q", out)
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		app := NewApp(Dependencies{})
		app.verbose = true
		app.cfg.UI.Color = config.ColorNever
		var buf bytes.Buffer
		app.errorHandler(&buf, fang.Styles{}, withIssue(issue.ConfigLoadFailedId, actionable))

		out := buf.String()
		if !strings.Contains(out, "Error chain") {
			t.Errorf("missing error chain in %q", out)
		}
		if !strings.Contains(out, "Could not load the configuration") {
			t.Errorf("missing troubleshooting note in %q", out)
		}
	})
}
