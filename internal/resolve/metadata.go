// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cargoshim/cargoshim/internal/process"
)

// Dependency kinds as reported in dep_kinds. A null kind is a normal edge.
const (
	depKindBuild = "build"
	depKindDev   = "dev"
)

type (
	// Metadata is the subset of `cargo metadata --format-version 1` output
	// the resolver reads.
	Metadata struct {
		Packages         []Package `json:"packages"`
		WorkspaceMembers []string  `json:"workspace_members"`
		Resolve          *Graph    `json:"resolve"`
	}

	// Package is one entry of the metadata package list.
	Package struct {
		ID           string              `json:"id"`
		Name         string              `json:"name"`
		Version      string              `json:"version"`
		Source       string              `json:"source"`
		Authors      []string            `json:"authors"`
		Description  string              `json:"description"`
		Homepage     string              `json:"homepage"`
		Repository   string              `json:"repository"`
		License      string              `json:"license"`
		LicenseFile  string              `json:"license_file"`
		Readme       string              `json:"readme"`
		RustVersion  string              `json:"rust_version"`
		Edition      string              `json:"edition"`
		Links        string              `json:"links"`
		ManifestPath string              `json:"manifest_path"`
		Features     map[string][]string `json:"features"`
		Targets      []Target            `json:"targets"`
	}

	// Target is one build target of a package.
	Target struct {
		Name       string   `json:"name"`
		Kind       []string `json:"kind"`
		CrateTypes []string `json:"crate_types"`
		SrcPath    string   `json:"src_path"`
	}

	// Graph is the resolved dependency graph.
	Graph struct {
		Nodes []Node `json:"nodes"`
		Root  string `json:"root"`
	}

	// Node is one package of the resolved graph with its enabled features.
	Node struct {
		ID       string    `json:"id"`
		Deps     []NodeDep `json:"deps"`
		Features []string  `json:"features"`
	}

	// NodeDep is an edge of the resolved graph.
	NodeDep struct {
		Name     string    `json:"name"`
		Pkg      string    `json:"pkg"`
		DepKinds []DepKind `json:"dep_kinds"`
	}

	// DepKind is one kind an edge is used with.
	DepKind struct {
		Kind   string `json:"kind"`
		Target string `json:"target"`
	}

	// Options select the project and how cargo resolves it.
	Options struct {
		// ProjectDir holds the root Cargo.toml.
		ProjectDir string
		// VendorDir holds one directory per vendored package and config.toml.
		VendorDir string
		// Target is the platform the graph is filtered for.
		Target string
		// Cargo is the cargo binary; empty means "cargo".
		Cargo             string
		Features          []string
		NoDefaultFeatures bool

		// Environ overrides the inherited environment, for tests.
		Environ func() []string
		Logger  *log.Logger
	}
)

// MetadataCommand builds the cargo invocation that reports the graph.
func MetadataCommand(opts Options) *process.Command {
	cargo := opts.Cargo
	if cargo == "" {
		cargo = "cargo"
	}
	cmd := process.New(cargo, "metadata", "--format-version", "1")
	if opts.NoDefaultFeatures {
		cmd.Arg("--no-default-features")
	}
	if len(opts.Features) > 0 {
		cmd.Arg("--features", strings.Join(opts.Features, ","))
	}
	cmd.Arg(
		"--frozen",
		"--config", filepath.Join(opts.VendorDir, "config.toml"),
		"--filter-platform", opts.Target,
	)
	cmd.Dir = opts.ProjectDir
	cmd.Environ = opts.Environ
	return cmd
}

// Run queries cargo for the graph of opts.ProjectDir and resolves it.
func Run(ctx context.Context, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var err error
	if opts.ProjectDir, err = filepath.Abs(opts.ProjectDir); err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}
	if opts.VendorDir, err = filepath.Abs(opts.VendorDir); err != nil {
		return nil, fmt.Errorf("resolving vendor dir: %w", err)
	}

	cmd := MetadataCommand(opts)
	logger.Debug("collecting metadata", "command", cmd.String())
	data, err := cmd.Output(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	return Resolve(&meta, opts)
}
