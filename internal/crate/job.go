// SPDX-License-Identifier: MPL-2.0

package crate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

var (
	// ErrDecodeJob is returned when a job record cannot be read or decoded.
	ErrDecodeJob = errors.New("invalid job record")
	// ErrNonUTF8Path is returned when a path that must be exported through the
	// environment is not valid UTF-8.
	ErrNonUTF8Path = errors.New("path contains non unicode value")
)

// Job is one compile action: a single target of a single package.
type Job struct {
	Common

	CrateType  CrateType `json:"crateType"`
	Entrypoint string    `json:"entrypoint"`
	TargetName string    `json:"targetName"`
	// BuildScriptRun is the output directory of the package's build-script
	// run, when the package has one.
	BuildScriptRun string `json:"buildScriptRun,omitempty"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	LibPath   []string          `json:"libPath,omitempty"`
	LinkLib   []string          `json:"linkLib,omitempty"`
	AllDeps   []string          `json:"allDeps,omitempty"`
	CheckCfgs []string          `json:"checkCfgs,omitempty"`
	Envs      map[string]string `json:"envs,omitempty"`
}

// LoadCommon reads a build-script info record.
func LoadCommon(path string) (*Common, error) {
	var c Common
	if err := decodeFile(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadJob reads and validates a compile job record.
func LoadJob(path string) (*Job, error) {
	var j Job
	if err := decodeFile(path, &j); err != nil {
		return nil, err
	}
	if err := j.CrateType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeJob, path, err)
	}
	if err := j.Edition.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeJob, path, err)
	}
	return &j, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrDecodeJob, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrDecodeJob, path, err)
	}
	return nil
}

// RequireUTF8 returns p unchanged, or ErrNonUTF8Path when it is not valid UTF-8.
func RequireUTF8(p string) (string, error) {
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("%w: %q", ErrNonUTF8Path, p)
	}
	return p, nil
}
