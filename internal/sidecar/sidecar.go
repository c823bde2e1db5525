// SPDX-License-Identifier: MPL-2.0

package sidecar

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
)

const (
	// LibraryRecordFile is the name of the library record inside a library
	// job's output directory.
	LibraryRecordFile = "rust-lib.toml"
	// ResultFile is the name of the build-script result inside a run directory.
	ResultFile = "result.toml"
	// OutputDir is the build-script OUT_DIR inside a run directory.
	OutputDir = "output"

	recordPerm = 0o644
)

var (
	// ErrDecodeRecord is returned when a record file is missing or malformed.
	ErrDecodeRecord = errors.New("invalid record")
	// ErrMetadataWithoutLinks is returned when metadata would be published by a
	// package that does not declare a links token.
	ErrMetadataWithoutLinks = errors.New("metadata without links")
)

// LibraryRecord describes a compiled library for downstream jobs.
type LibraryRecord struct {
	// Lib is the artifact passed to --extern.
	Lib string `toml:"lib"`
	// Deps is the transitive closure of upstream library job directories.
	Deps []string `toml:"deps"`
	// Metadata is exported to dependent build scripts as DEP_<LINKS>_<KEY>.
	Metadata map[string]string `toml:"metadata"`
	// LibPath holds native search paths contributed by the library.
	LibPath []string `toml:"lib_path"`
	Links   string   `toml:"links,omitempty"`
}

// ReadLibraryRecord reads the record left in dir by a library job.
func ReadLibraryRecord(dir string) (*LibraryRecord, error) {
	var r LibraryRecord
	if err := readTOML(filepath.Join(dir, LibraryRecordFile), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Write validates the record and writes it into dir. Set-valued fields are
// sorted and deduplicated so the file content is deterministic.
func (r *LibraryRecord) Write(dir string) error {
	if len(r.Metadata) > 0 && r.Links == "" {
		return ErrMetadataWithoutLinks
	}
	out := LibraryRecord{
		Lib:      r.Lib,
		Deps:     SortedSet(r.Deps),
		Metadata: r.Metadata,
		LibPath:  SortedSet(r.LibPath),
		Links:    r.Links,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return writeTOML(filepath.Join(dir, LibraryRecordFile), &out)
}

// DepEnv returns the DEP_<LINKS>_<KEY> variables the record exposes to the
// build scripts of dependent packages.
func (r *LibraryRecord) DepEnv() (map[string]string, error) {
	if len(r.Metadata) == 0 {
		return nil, nil
	}
	if r.Links == "" {
		return nil, fmt.Errorf("%w: library %s", ErrMetadataWithoutLinks, r.Lib)
	}
	env := make(map[string]string, len(r.Metadata))
	for key, value := range r.Metadata {
		env["DEP_"+envName(r.Links)+"_"+envName(key)] = value
	}
	return env, nil
}

// ArtifactHash returns the suffix that keeps library artifacts of the same
// package apart when they differ in version or enabled features. Fields are
// hashed in order, each terminated by a NUL byte, and the first eight bytes
// of the SHA-256 digest are hex-encoded. The terminators make the suffix
// differ from one computed over the plain concatenation, so rlibs built by
// other Cargo-less builders that hash that way are not found under these names.
func ArtifactHash(name, version string, features []string) string {
	h := sha256.New()
	for _, field := range append([]string{name, version}, features...) {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// SortedSet returns the distinct elements of s in sorted order.
func SortedSet(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func envName(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "-", "_")
}

func readTOML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrDecodeRecord, path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrDecodeRecord, path, err)
	}
	return nil
}

func writeTOML(path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, recordPerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
