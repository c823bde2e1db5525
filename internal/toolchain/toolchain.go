// SPDX-License-Identifier: MPL-2.0

// Package toolchain queries the Rust compiler for facts the build needs but
// cannot know itself: the host tuple and the default cfg set of a target.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cargoshim/cargoshim/internal/process"
)

var (
	// ErrQueryFailed wraps every failed toolchain query.
	ErrQueryFailed = errors.New("toolchain query failed")
	// ErrNonUTF8Output is returned when rustc prints something that is not UTF-8.
	ErrNonUTF8Output = errors.New("output includes non utf-8")
)

// HostTuple returns the tuple of the machine rustc runs on.
func HostTuple(ctx context.Context, rustc string) (string, error) {
	out, err := query(ctx, process.New(rustc, "--print=host-tuple"))
	if err != nil {
		return "", fmt.Errorf("%w: getting host tuple from rustc: %w", ErrQueryFailed, err)
	}
	return strings.TrimSpace(out), nil
}

// TargetCfg returns the raw `--print=cfg` output for target, one cfg per line.
func TargetCfg(ctx context.Context, rustc, target string) (string, error) {
	out, err := query(ctx, process.New(rustc, "-O", "--print=cfg", "--target", target))
	if err != nil {
		return "", fmt.Errorf("%w: getting cfg from rustc: %w", ErrQueryFailed, err)
	}
	return out, nil
}

func query(ctx context.Context, cmd *process.Command) (string, error) {
	out, err := cmd.Output(ctx)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", ErrNonUTF8Output
	}
	return string(out), nil
}
