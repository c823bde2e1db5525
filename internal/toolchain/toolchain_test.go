// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cargoshim/cargoshim/internal/process"
	"github.com/cargoshim/cargoshim/internal/testutil"
)

const fakeRustc = `#!/bin/sh
case "$*" in
  --print=host-tuple) printf 'x86_64-unknown-linux-gnu\n' ;;
  "-O --print=cfg --target aarch64-unknown-linux-gnu")
    printf 'debug_assertions\ntarget_arch="aarch64"\ntarget_os="linux"\n' ;;
  *) echo "unexpected arguments: $*" >&2; exit 7 ;;
esac
`

func TestHostTuple(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	rustc := testutil.WriteScript(t, t.TempDir(), "rustc", fakeRustc)
	got, err := HostTuple(context.Background(), rustc)
	if err != nil {
		t.Fatalf("HostTuple() error: %v", err)
	}
	if got != "x86_64-unknown-linux-gnu" {
		t.Errorf("HostTuple() = %q", got)
	}
}

func TestTargetCfg(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	rustc := testutil.WriteScript(t, t.TempDir(), "rustc", fakeRustc)
	got, err := TargetCfg(context.Background(), rustc, "aarch64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("TargetCfg() error: %v", err)
	}
	if !strings.Contains(got, `target_arch="aarch64"`) {
		t.Errorf("TargetCfg() = %q", got)
	}
}

func TestTargetCfgFailure(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	rustc := testutil.WriteScript(t, t.TempDir(), "rustc", fakeRustc)
	_, err := TargetCfg(context.Background(), rustc, "wasm32-unknown-unknown")
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("error should wrap ErrQueryFailed: %v", err)
	}
	var cmdErr *process.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *process.CommandError, got %T (%v)", err, err)
	}
	if cmdErr.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Error(), "--target wasm32-unknown-unknown") {
		t.Errorf("error should name the command line: %v", cmdErr)
	}
}

func TestHostTupleNonUTF8(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	rustc := testutil.WriteScript(t, t.TempDir(), "rustc", "#!/bin/sh\nprintf '\\377\\376'\n")
	if _, err := HostTuple(context.Background(), rustc); !errors.Is(err, ErrNonUTF8Output) {
		t.Errorf("error = %v, want ErrNonUTF8Output", err)
	}
}
